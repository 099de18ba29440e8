// Package commands implements the seam-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/seam-protocol/seam-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view
// command.
type ViewFilter struct {
	Direction *log.Direction
	Category  *log.Category
	ConnID    string
}

// RunView reads the log file and prints matching events.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if !matches(event, filter) {
			continue
		}
		formatEvent(w, event)
	}
	return nil
}

func matches(event log.Event, filter ViewFilter) bool {
	if filter.Direction != nil && event.Direction != *filter.Direction {
		return false
	}
	if filter.Category != nil && event.Category != *filter.Category {
		return false
	}
	if filter.ConnID != "" && !strings.HasPrefix(event.ConnectionID, filter.ConnID) {
		return false
	}
	return true
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)

	var typeLabel string
	switch {
	case event.ControlMsg != nil:
		typeLabel = event.ControlMsg.Type
	case event.Data != nil:
		typeLabel = "Data"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-4s %s %s\n",
		ts, connID, event.Direction, event.Category, typeLabel)

	if event.Peer != "" {
		fmt.Fprintf(w, "  Peer: %s\n", event.Peer)
	}

	switch {
	case event.Data != nil:
		fmt.Fprintf(w, "  Size: %d bytes on channel %d\n", event.Data.Size, event.Data.Channel)
	case event.StateChange != nil:
		fmt.Fprintf(w, "  Transition: %s -> %s\n", event.StateChange.OldState, event.StateChange.NewState)
		if event.StateChange.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", event.StateChange.Reason)
		}
	case event.Error != nil:
		if event.Error.Kind != "" {
			fmt.Fprintf(w, "  Kind: %s\n", event.Error.Kind)
		}
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
	}

	fmt.Fprintln(w)
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	case "none":
		return log.DirectionNone, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in, out, or none)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "control":
		return log.CategoryControl, nil
	case "data":
		return log.CategoryData, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be control, data, state, or error)", s)
	}
}
