package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/syncstream/server/internal/repository/session"
)

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r repo) getConnectTokenKey(token string) string {
	return "connect-token:" + token
}

func (r repo) SetConnectToken(ctx context.Context, params *session.SetConnectTokenParams) error {
	ok, err := r.rc.SetNX(ctx, r.getConnectTokenKey(params.Token), params.UserId, params.TTL).Result()
	if err != nil {
		return fmt.Errorf("failed to set connect token: %w", err)
	}
	if !ok {
		return session.ErrTokenAlreadyExists
	}

	return nil
}

// PopConnectToken redeems a one-time connect token, deleting it atomically so
// it cannot be replayed.
func (r repo) PopConnectToken(ctx context.Context, token string) (string, error) {
	userId, err := r.rc.GetDel(ctx, r.getConnectTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", session.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to pop connect token: %w", err)
	}

	return userId, nil
}
