package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// LengthPrefixSize is the size of the big-endian uint32 frame length.
	LengthPrefixSize = 4
	// CmdIDSize is the size of the big-endian uint16 command id that opens
	// every frame body.
	CmdIDSize = 2
	// MaxMessageSize bounds a single frame (cmd id + body) to keep a bad
	// client from making the server allocate arbitrarily large buffers.
	MaxMessageSize = 1 * 1024 * 1024
)

var (
	ErrFrameTooLarge = errors.New("frame exceeds max message size")
	ErrFrameTooShort = errors.New("frame shorter than command id")
)

// Packet is one decoded frame: a command id and its undecoded body.
type Packet struct {
	CmdID CmdID
	Body  []byte
}

// EncodeFrame lays out [len u32][cmd u16][body].
func EncodeFrame(cmd CmdID, body []byte) ([]byte, error) {
	size := CmdIDSize + len(body)
	if size > MaxMessageSize {
		return nil, fmt.Errorf("%s: %d bytes: %w", cmd, size, ErrFrameTooLarge)
	}
	frame := make([]byte, LengthPrefixSize+size)
	binary.BigEndian.PutUint32(frame, uint32(size))
	binary.BigEndian.PutUint16(frame[LengthPrefixSize:], uint16(cmd))
	copy(frame[LengthPrefixSize+CmdIDSize:], body)
	return frame, nil
}

// ReadFrame reads exactly one frame from r.
func ReadFrame(r io.Reader) (Packet, error) {
	var lenBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Packet{}, err
	}
	size := binary.BigEndian.Uint32(lenBuf[:])
	if size > MaxMessageSize {
		return Packet{}, fmt.Errorf("%d bytes: %w", size, ErrFrameTooLarge)
	}
	if size < CmdIDSize {
		return Packet{}, ErrFrameTooShort
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Packet{}, err
	}
	return Packet{
		CmdID: CmdID(binary.BigEndian.Uint16(buf)),
		Body:  buf[CmdIDSize:],
	}, nil
}

// DecodeFrame parses a complete frame held in memory, as delivered by
// message-oriented transports.
func DecodeFrame(frame []byte) (Packet, error) {
	if len(frame) < LengthPrefixSize {
		return Packet{}, ErrFrameTooShort
	}
	size := binary.BigEndian.Uint32(frame)
	if size > MaxMessageSize {
		return Packet{}, fmt.Errorf("%d bytes: %w", size, ErrFrameTooLarge)
	}
	if size < CmdIDSize || int(size) != len(frame)-LengthPrefixSize {
		return Packet{}, fmt.Errorf("declared %d bytes, have %d: %w", size, len(frame)-LengthPrefixSize, ErrFrameTooShort)
	}
	body := frame[LengthPrefixSize:]
	return Packet{
		CmdID: CmdID(binary.BigEndian.Uint16(body)),
		Body:  body[CmdIDSize:],
	}, nil
}
