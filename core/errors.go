package core

import "errors"

// Sentinel errors returned by the controller. None of them is fatal to a session.
var (
	ErrParse          = errors.New("malformed date")
	ErrOutOfRange     = errors.New("date outside the cursor range")
	ErrCursorOwned    = errors.New("cursor is owned by another playback")
	ErrQueryFailure   = errors.New("ranking query failed")
	ErrUnknownFeature = errors.New("unknown feature")
	ErrClosed         = errors.New("controller is closed")
)
