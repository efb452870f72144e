package tokenstore

import (
	"testing"

	"github.com/adred-codev/soltrace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bonk() domain.TokenInfo {
	return domain.TokenInfo{
		ID:       "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		Name:     "Bonk",
		Symbol:   "Bonk",
		Decimals: 5,
	}
}

func TestAddToken(t *testing.T) {
	store := New()
	token := bonk()

	require.NoError(t, store.Add(token))
	assert.ErrorIs(t, store.Add(token), ErrAlreadyExists)
}

func TestGetToken(t *testing.T) {
	store := New()
	token := bonk()
	require.NoError(t, store.Add(token))

	got, err := store.Get(token.ID)
	require.NoError(t, err)
	assert.Equal(t, token, got)

	_, err = store.Get("EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasToken(t *testing.T) {
	store := New()
	token := bonk()

	assert.False(t, store.Has(token.ID))
	require.NoError(t, store.Add(token))
	assert.True(t, store.Has(token.ID))
}
