package repository

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrPermissionsNotFound = errors.New("permissions not found")
)
