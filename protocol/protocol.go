// Package protocol implements the length-prefixed frame used by the "frame"
// transport, which carries envelopes over a plain TCP stream.
//
// A fixed-size 8-byte header precedes every body so the receiver knows
// exactly how many bytes to read, regardless of how TCP split the stream.
//
// Frame format:
//
//	0      3  4         8
//	┌──────┬──┬─────────┬───────────────┐
//	│magic │v │ bodyLen │    body ...   │
//	│ wcf  │01│ uint32  │ bodyLen bytes │
//	└──────┴──┴─────────┴───────────────┘
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	MagicNumber byte = 0x77 // 'w'
	MagicByte2  byte = 0x63 // 'c'
	MagicByte3  byte = 0x66 // 'f'
	Version     byte = 0x01
	HeaderSize  int  = 8 // 3 (magic) + 1 (version) + 4 (bodyLen)

	// MaxBodySize bounds a single frame so a corrupt length cannot make the
	// reader allocate gigabytes.
	MaxBodySize = 64 << 20
)

// Encode writes a complete frame (header + body) to w in a single Write.
// Callers sharing w between goroutines must serialize calls themselves.
func Encode(w io.Writer, body []byte) error {
	if len(body) > MaxBodySize {
		return fmt.Errorf("frame body too large: %d bytes", len(body))
	}

	buf := make([]byte, HeaderSize+len(body))
	copy(buf[0:3], []byte{MagicNumber, MagicByte2, MagicByte3})
	buf[3] = Version
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(body)))
	copy(buf[HeaderSize:], body)

	_, err := w.Write(buf)
	return err
}

// Decode reads a complete frame from r and returns its body.
// It validates the magic number, version and body length, and uses
// io.ReadFull so a frame is never returned partially.
func Decode(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if header[0] != MagicNumber || header[1] != MagicByte2 || header[2] != MagicByte3 {
		return nil, fmt.Errorf("invalid magic number: %x", header[0:3])
	}
	if header[3] != Version {
		return nil, fmt.Errorf("unsupported version: %d", header[3])
	}

	bodyLen := binary.BigEndian.Uint32(header[4:8])
	if bodyLen > MaxBodySize {
		return nil, fmt.Errorf("frame body too large: %d bytes", bodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
