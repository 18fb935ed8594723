package client

import (
	"errors"

	"wcferry/codec"
)

var (
	// ErrCommunication is the single kind a dispatcher caller sees for any
	// transport or codec failure. The cause stays in the chain.
	ErrCommunication       = errors.New("client: communication failed")
	ErrSerializationFailed = errors.New("client: serialization failed")

	ErrAlreadySubscribed = errors.New("client: already subscribed")
	ErrEnableRejected    = errors.New("client: worker rejected enabling events")
	ErrDisableRejected   = errors.New("client: worker rejected disabling events")
	ErrSessionClosed     = errors.New("client: session closed")

	ErrMalformedMessage = codec.ErrMalformedMessage
)
