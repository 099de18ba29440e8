package wire

import (
	"errors"
	"fmt"
)

// Frame tags. Every datagram on an untyped substrate starts with one.
const (
	// TagControl marks a frame carrying a CBOR control message.
	TagControl byte = 0x01

	// TagData marks a frame carrying application payload.
	TagData byte = 0x02
)

// DataHeaderSize is the size of a data frame header (tag + channel).
const DataHeaderSize = 2

// MaxPayloadSize is the maximum application payload per data frame.
// Sized so a full frame fits in a single conservative UDP datagram.
const MaxPayloadSize = 65000

// Framing errors.
var (
	// ErrFrameEmpty indicates a zero-length frame.
	ErrFrameEmpty = errors.New("frame is empty")

	// ErrFrameTruncated indicates a frame shorter than its header.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrUnknownTag indicates an unrecognized frame tag.
	ErrUnknownTag = errors.New("unknown frame tag")

	// ErrPayloadTooLarge indicates the payload exceeds MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Frame is a decoded substrate datagram.
// Exactly one of Control or Payload is meaningful, selected by Tag.
type Frame struct {
	// Tag is the frame tag (TagControl or TagData).
	Tag byte

	// Control is the decoded control message (TagControl only).
	Control *ControlMessage

	// Channel is the channel index (TagData only).
	Channel uint8

	// Payload is the application payload (TagData only).
	// It aliases the input buffer; callers that retain it must copy.
	Payload []byte
}

// EncodeControlFrame encodes a control message into a tagged frame.
func EncodeControlFrame(msg *ControlMessage) ([]byte, error) {
	body, err := EncodeControlMessage(msg)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 1+len(body))
	frame[0] = TagControl
	copy(frame[1:], body)
	return frame, nil
}

// EncodeDataFrame encodes an application payload into a tagged frame.
// The payload is copied into the returned buffer.
func EncodeDataFrame(channel uint8, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrFrameEmpty
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	frame := make([]byte, DataHeaderSize+len(payload))
	frame[0] = TagData
	frame[1] = channel
	copy(frame[DataHeaderSize:], payload)
	return frame, nil
}

// DecodeFrame decodes a tagged substrate datagram.
func DecodeFrame(raw []byte) (Frame, error) {
	if len(raw) == 0 {
		return Frame{}, ErrFrameEmpty
	}

	switch raw[0] {
	case TagControl:
		msg, err := DecodeControlMessage(raw[1:])
		if err != nil {
			return Frame{}, err
		}
		return Frame{Tag: TagControl, Control: msg}, nil

	case TagData:
		if len(raw) < DataHeaderSize+1 {
			return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTruncated, len(raw))
		}
		return Frame{
			Tag:     TagData,
			Channel: raw[1],
			Payload: raw[DataHeaderSize:],
		}, nil

	default:
		return Frame{}, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, raw[0])
	}
}
