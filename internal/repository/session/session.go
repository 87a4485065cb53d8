package session

import (
	"errors"
	"time"
)

var (
	ErrTokenNotFound      = errors.New("connect token not found")
	ErrTokenAlreadyExists = errors.New("connect token already exists")
)

type SetConnectTokenParams struct {
	Token  string
	UserId string
	TTL    time.Duration
}
