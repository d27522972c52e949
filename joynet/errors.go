package joynet

import "errors"

var (
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrTransport          = errors.New("transport failure")
	ErrContentMismatch    = errors.New("content does not match between players")
	ErrInvalidState       = errors.New("invalid game state")
	ErrNotConfigured      = errors.New("controllers not set up")
	ErrAlreadyConfigured  = errors.New("controllers already set up")
	ErrNoSuchPlayer       = errors.New("no such player")
	ErrNoSuchController   = errors.New("no such controller")
	ErrSlotTaken          = errors.New("player slot taken")
	ErrInvalidContent     = errors.New("invalid content")
	ErrInvalidOption      = errors.New("invalid option")
	ErrBadMessage         = errors.New("malformed message")
	ErrPlayerLimitReached = errors.New("player limit reached")
	ErrClosed             = errors.New("use of closed transport")
)
