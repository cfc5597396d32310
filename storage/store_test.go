package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Marlvin12/perfit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Tokens(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	token, err := store.AuthToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SetAuthToken(ctx, "tok"))
	require.NoError(t, store.SetRefreshToken(ctx, "ref"))

	token, err = store.AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	refresh, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ref", refresh)
}

func TestStore_PartitionPlacement(t *testing.T) {
	local, sync := NewMemoryPartition(), NewMemoryPartition()
	store := NewStore(local, sync)
	ctx := context.Background()

	require.NoError(t, store.SetAuthToken(ctx, "tok"))
	require.NoError(t, store.SetUser(ctx, types.User{ID: "u1"}))
	require.NoError(t, store.SetAvatar(ctx, types.Avatar{ID: "av1"}))
	require.NoError(t, store.SetSettings(ctx, types.Settings{FitPreference: types.FitRelaxed}))
	require.NoError(t, store.AddTryOnResult(ctx, types.TryOnResult{ID: "tr1"}))

	for _, key := range []string{KeyAuthToken, KeySettings, KeyTryOnHistory} {
		_, err := local.Get(ctx, key)
		assert.NoError(t, err, key)
		_, err = sync.Get(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, key)
	}
	for _, key := range []string{KeyUser, KeyAvatar} {
		_, err := sync.Get(ctx, key)
		assert.NoError(t, err, key)
		_, err = local.Get(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestStore_AuthState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state, err := store.AuthState(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
	assert.Nil(t, state.Avatar)

	// a token alone does not make the user authenticated
	require.NoError(t, store.SetAuthToken(ctx, "tok"))
	state, err = store.AuthState(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsAuthenticated)

	require.NoError(t, store.SetUser(ctx, types.User{ID: "u1", Email: "ada@example.com"}))
	require.NoError(t, store.SetAvatar(ctx, types.Avatar{ID: "av1", Status: types.AvatarReady}))

	state, err = store.AuthState(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "u1", state.User.ID)
	assert.Equal(t, "av1", state.Avatar.ID)
}

func TestStore_TryOnHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	history, err := store.TryOnHistory(ctx)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)

	for i := 0; i < MaxTryOnHistory+5; i++ {
		require.NoError(t, store.AddTryOnResult(ctx, types.TryOnResult{ID: fmt.Sprintf("tr%d", i)}))
	}

	history, err = store.TryOnHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, MaxTryOnHistory)
	assert.Equal(t, "tr54", history[0].ID)
	assert.Equal(t, "tr5", history[MaxTryOnHistory-1].ID)

	found, err := store.FindTryOnResult(ctx, "tr10")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "tr10", found.ID)

	found, err = store.FindTryOnResult(ctx, "tr0")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestStore_Settings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	settings, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSettings(), settings)

	require.NoError(t, store.SetSettings(ctx, types.Settings{FitPreference: types.FitFitted}))
	settings, err = store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.FitFitted, settings.FitPreference)
	assert.False(t, settings.ShowTryOnButton)
}

func TestStore_UpdateSettings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	settings, err := store.UpdateSettings(ctx, func(s *types.Settings) error {
		s.ShowTryOnButton = false
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, types.Settings{FitPreference: types.FitRegular, ShowTryOnButton: false}, settings)

	_, err = store.UpdateSettings(ctx, func(s *types.Settings) error {
		s.FitPreference = types.FitFitted
		return fmt.Errorf("rejected")
	})
	assert.EqualError(t, err, "rejected")

	stored, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, stored)
}

func TestStore_AddTryOnResult_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.AddTryOnResult(ctx, types.TryOnResult{ID: fmt.Sprintf("tr%d", i)}))
		}(i)
	}
	wg.Wait()

	history, err := store.TryOnHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 20)
}

func TestStore_ClearAuth(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SetAuthToken(ctx, "tok"))
	require.NoError(t, store.SetRefreshToken(ctx, "ref"))
	require.NoError(t, store.SetUser(ctx, types.User{ID: "u1"}))
	require.NoError(t, store.SetAvatar(ctx, types.Avatar{ID: "av1"}))
	require.NoError(t, store.AddTryOnResult(ctx, types.TryOnResult{ID: "tr1"}))

	require.NoError(t, store.ClearAuth(ctx))

	token, err := store.AuthToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	state, err := store.AuthState(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.Avatar)

	// history survives sign-out
	history, err := store.TryOnHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStore_CorruptValue(t *testing.T) {
	local := NewMemoryPartition()
	store := NewStore(local, NewMemoryPartition())
	ctx := context.Background()

	require.NoError(t, local.Set(ctx, KeyTryOnHistory, []byte("{not json")))

	_, err := store.TryOnHistory(ctx)
	assert.ErrorContains(t, err, KeyTryOnHistory)
}
