package server

import "errors"

var (
	ErrMaxClientsReached = errors.New("maximum clients reached")
	ErrListenerFailed    = errors.New("failed to create listener")
)
