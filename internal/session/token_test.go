package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finstat/internal/session"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens, err := session.NewTokens("secret", time.Hour)
	require.NoError(t, err)

	id := uuid.New()

	raw, err := tokens.Sign(id)
	require.NoError(t, err)

	got, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokens_Rejects(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tokens, err := session.NewTokens("secret", time.Hour)
	require.NoError(t, err)

	tokens = tokens.WithClock(func() time.Time { return now })

	raw, err := tokens.Sign(uuid.New())
	require.NoError(t, err)

	other, err := session.NewTokens("other-secret", time.Hour)
	require.NoError(t, err)

	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, session.ErrInvalidToken)

	later := tokens.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	_, err = later.Parse(raw)
	assert.ErrorIs(t, err, session.ErrInvalidToken)

	_, err = tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestTokens_RandomSecret(t *testing.T) {
	a, err := session.NewTokens("", time.Hour)
	require.NoError(t, err)

	b, err := session.NewTokens("", time.Hour)
	require.NoError(t, err)

	raw, err := a.Sign(uuid.New())
	require.NoError(t, err)

	_, err = b.Parse(raw)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}
