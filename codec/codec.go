// Package codec serializes message envelopes to and from bytes.
//
// Decoding is all-or-nothing: either the full typed envelope is recovered
// or Decode fails with ErrMalformedMessage and the target is left untouched.
package codec

import "errors"

type CodecType byte

const (
	CodecTypeProtobuf CodecType = 0
)

var (
	// ErrMalformedMessage reports bytes that are not a valid envelope.
	ErrMalformedMessage = errors.New("codec: malformed message")
	// ErrUnsupportedType reports a Go value the codec cannot handle.
	ErrUnsupportedType = errors.New("codec: unsupported type")
)

type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Type() CodecType
}
