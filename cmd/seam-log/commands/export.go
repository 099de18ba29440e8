package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/seam-protocol/seam-go/pkg/log"
)

// jsonEvent is the JSONL export shape, with readable field names
// instead of the compact integer keys used on disk.
type jsonEvent struct {
	Timestamp    string `json:"ts"`
	ConnectionID string `json:"conn_id"`
	Direction    string `json:"direction"`
	Category     string `json:"category"`
	Peer         string `json:"peer,omitempty"`

	ControlType string `json:"control_type,omitempty"`

	DataSize    *int   `json:"data_size,omitempty"`
	DataChannel *uint8 `json:"data_channel,omitempty"`

	OldState string `json:"old_state,omitempty"`
	NewState string `json:"new_state,omitempty"`
	Reason   string `json:"reason,omitempty"`

	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// RunExport reads the log file and writes one JSON object per line.
func RunExport(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
	return nil
}

func toJSONEvent(event log.Event) jsonEvent {
	out := jsonEvent{
		Timestamp:    event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z"),
		ConnectionID: event.ConnectionID,
		Direction:    event.Direction.String(),
		Category:     event.Category.String(),
		Peer:         event.Peer,
	}

	if event.ControlMsg != nil {
		out.ControlType = event.ControlMsg.Type
	}
	if event.Data != nil {
		size := event.Data.Size
		channel := event.Data.Channel
		out.DataSize = &size
		out.DataChannel = &channel
	}
	if event.StateChange != nil {
		out.OldState = event.StateChange.OldState
		out.NewState = event.StateChange.NewState
		out.Reason = event.StateChange.Reason
	}
	if event.Error != nil {
		out.ErrorKind = event.Error.Kind
		out.ErrorMessage = event.Error.Message
	}
	return out
}
