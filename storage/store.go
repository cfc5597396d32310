package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Marlvin12/perfit/internal/types"
)

// Storage keys
const (
	KeyAuthToken    = "perfit_auth_token"
	KeyRefreshToken = "perfit_refresh_token"
	KeyUser         = "perfit_user"
	KeyAvatar       = "perfit_avatar"
	KeySettings     = "perfit_settings"
	KeyTryOnHistory = "perfit_try_on_history"
)

// MaxTryOnHistory is the number of try-on results kept
const MaxTryOnHistory = 50

// Store is the typed view over the local and synchronized partitions
type Store struct {
	local Partition
	sync  Partition

	// mu serializes read-modify-write updates
	mu sync.Mutex
}

// NewStore creates a store over the two partitions
func NewStore(local, sync Partition) *Store {
	return &Store{local: local, sync: sync}
}

// NewMemoryStore creates a store backed by memory only
func NewMemoryStore() *Store {
	return NewStore(NewMemoryPartition(), NewMemoryPartition())
}

// get decodes the JSON value at key into v. It reports false when the key is missing.
func get(ctx context.Context, p Partition, key string, v any) (bool, error) {
	data, err := p.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func set(ctx context.Context, p Partition, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return p.Set(ctx, key, data)
}

// AuthToken returns the stored access token, or "" when signed out
func (s *Store) AuthToken(ctx context.Context) (string, error) {
	var token string
	_, err := get(ctx, s.local, KeyAuthToken, &token)
	return token, err
}

// SetAuthToken stores the access token
func (s *Store) SetAuthToken(ctx context.Context, token string) error {
	return set(ctx, s.local, KeyAuthToken, token)
}

// RefreshToken returns the stored refresh token, or ""
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	var token string
	_, err := get(ctx, s.local, KeyRefreshToken, &token)
	return token, err
}

// SetRefreshToken stores the refresh token
func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return set(ctx, s.local, KeyRefreshToken, token)
}

// User returns the signed-in user, or nil
func (s *Store) User(ctx context.Context) (*types.User, error) {
	var user types.User
	ok, err := get(ctx, s.sync, KeyUser, &user)
	if !ok || err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUser stores the signed-in user
func (s *Store) SetUser(ctx context.Context, user types.User) error {
	return set(ctx, s.sync, KeyUser, user)
}

// Avatar returns the user's avatar, or nil
func (s *Store) Avatar(ctx context.Context) (*types.Avatar, error) {
	var avatar types.Avatar
	ok, err := get(ctx, s.sync, KeyAvatar, &avatar)
	if !ok || err != nil {
		return nil, err
	}
	return &avatar, nil
}

// SetAvatar stores the user's avatar
func (s *Store) SetAvatar(ctx context.Context, avatar types.Avatar) error {
	return set(ctx, s.sync, KeyAvatar, avatar)
}

// Settings returns the user's settings, or the defaults when none are stored
func (s *Store) Settings(ctx context.Context) (types.Settings, error) {
	settings := types.DefaultSettings()
	if _, err := get(ctx, s.local, KeySettings, &settings); err != nil {
		return types.DefaultSettings(), err
	}
	return settings, nil
}

// SetSettings stores the user's settings
func (s *Store) SetSettings(ctx context.Context, settings types.Settings) error {
	return set(ctx, s.local, KeySettings, settings)
}

// UpdateSettings applies update to the stored settings (defaults when none are
// stored) and saves the result. Nothing is saved when update fails.
func (s *Store) UpdateSettings(ctx context.Context, update func(*types.Settings) error) (types.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.Settings(ctx)
	if err != nil {
		return types.Settings{}, err
	}
	if err := update(&settings); err != nil {
		return types.Settings{}, err
	}
	if err := s.SetSettings(ctx, settings); err != nil {
		return types.Settings{}, err
	}
	return settings, nil
}

// AuthState reports the signed-in user and avatar. A user is authenticated
// exactly when a user record is stored.
func (s *Store) AuthState(ctx context.Context) (types.AuthState, error) {
	user, err := s.User(ctx)
	if err != nil {
		return types.AuthState{}, err
	}
	avatar, err := s.Avatar(ctx)
	if err != nil {
		return types.AuthState{}, err
	}
	return types.AuthState{
		IsAuthenticated: user != nil,
		User:            user,
		Avatar:          avatar,
	}, nil
}

// TryOnHistory returns past try-on results, newest first
func (s *Store) TryOnHistory(ctx context.Context) ([]types.TryOnResult, error) {
	history := []types.TryOnResult{}
	if _, err := get(ctx, s.local, KeyTryOnHistory, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []types.TryOnResult{}
	}
	return history, nil
}

// AddTryOnResult prepends a result to the history, keeping at most MaxTryOnHistory entries
func (s *Store) AddTryOnResult(ctx context.Context, result types.TryOnResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.TryOnHistory(ctx)
	if err != nil {
		return err
	}

	updated := append([]types.TryOnResult{result}, history...)
	if len(updated) > MaxTryOnHistory {
		updated = updated[:MaxTryOnHistory]
	}
	return set(ctx, s.local, KeyTryOnHistory, updated)
}

// FindTryOnResult returns the history entry with the given id, or nil
func (s *Store) FindTryOnResult(ctx context.Context, id string) (*types.TryOnResult, error) {
	history, err := s.TryOnHistory(ctx)
	if err != nil {
		return nil, err
	}
	for i := range history {
		if history[i].ID == id {
			return &history[i], nil
		}
	}
	return nil, nil
}

// ClearAuth removes the tokens, the user and the avatar
func (s *Store) ClearAuth(ctx context.Context) error {
	removals := []struct {
		partition Partition
		key       string
	}{
		{s.local, KeyAuthToken},
		{s.local, KeyRefreshToken},
		{s.sync, KeyUser},
		{s.sync, KeyAvatar},
	}

	var errs []error
	for _, r := range removals {
		if err := r.partition.Remove(ctx, r.key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
