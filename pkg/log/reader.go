package log

import (
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Reader reads events back from a CBOR event log file.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
}

// NewReader opens an event log file for reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
	}, nil
}

// Next returns the next event, or io.EOF when the stream ends.
func (r *Reader) Next() (Event, error) {
	var event Event
	if err := r.decoder.Decode(&event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
