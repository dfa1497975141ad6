// Package credentials persists the signed-in session between runs: the access
// token under access_token and the JSON user summary under user_data.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"

	"neoquiz/internal/auth/models"
)

const (
	TokenKey = "access_token"
	UserKey  = "user_data"
)

// Store is the local credential store. Missing values come back empty or nil
// without an error.
type Store interface {
	SaveToken(ctx context.Context, token string) error
	GetToken(ctx context.Context) (string, error)
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context) (*models.User, error)
	ClearAll(ctx context.Context) error
}

// LoadSession returns the stored session, or nil when no token is held.
func LoadSession(ctx context.Context, store Store) (*models.Session, error) {
	token, err := store.GetToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	user, err := store.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Session{AccessToken: token, User: user}, nil
}

func encodeUser(user *models.User) ([]byte, error) {
	if user == nil {
		return nil, fmt.Errorf("encode %s: user is nil", UserKey)
	}
	b, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", UserKey, err)
	}
	return b, nil
}

func decodeUser(raw []byte) (*models.User, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode %s: %w", UserKey, err)
	}
	return &user, nil
}
