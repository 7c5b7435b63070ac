package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finstat/internal/encoding"
)

func readAll(t *testing.T, input []byte) (string, encoding.Charset) {
	t.Helper()

	r, cs, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), cs
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Month,Income,Expense\nMärz,1000,500\n"

	got, cs := readAll(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, encoding.UTF8, cs)
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// "Février;1000\n" in Windows-1252: é = 0xE9
	input := []byte{'F', 0xE9, 'v', 'r', 'i', 'e', 'r', ';', '1', '0', '0', '0', '\n'}

	got, _ := readAll(t, input)
	assert.Equal(t, "Février;1000\n", got)
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Month,Income\n")...)

	got, cs := readAll(t, input)
	assert.Equal(t, "Month,Income\n", got)
	assert.Equal(t, encoding.UTF8BOM, cs)
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE, 'M', 0, 'a', 0, 'y', 0}

	got, cs := readAll(t, input)
	assert.Equal(t, "May", got)
	assert.Equal(t, encoding.UTF16LE, cs)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	got, cs := readAll(t, nil)
	assert.Empty(t, got)
	assert.Equal(t, encoding.UTF8, cs)
}
