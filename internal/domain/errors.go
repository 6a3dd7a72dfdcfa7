package domain

import "errors"

var (
	ErrInvalidStatus    = errors.New("invalid status")
	ErrSelfRequest      = errors.New("cannot send connection request to oneself")
	ErrDuplicateRequest = errors.New("connection request already exists")
	ErrTargetNotFound   = errors.New("target user not found")
	ErrRequestNotFound  = errors.New("connection request not found")
	ErrUnauthenticated  = errors.New("unauthenticated")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	ErrChatNotFound   = errors.New("chat not found")
	ErrChatNotAllowed = errors.New("chat is only available between connections")
)
