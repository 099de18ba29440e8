package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/seam-protocol/seam-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	DataBytesIn       int
	DataBytesOut      int
	Errors            int
	Connections       map[string]*ConnectionStats
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats holds statistics for a single connection.
type ConnectionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Peer      string
}

// CollectStats aggregates statistics from a log file.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Connections:       make(map[string]*ConnectionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++

		if event.Data != nil {
			switch event.Direction {
			case log.DirectionIn:
				stats.DataBytesIn += event.Data.Size
			case log.DirectionOut:
				stats.DataBytesOut += event.Data.Size
			}
		}
		if event.Error != nil {
			stats.Errors++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		conn, ok := stats.Connections[event.ConnectionID]
		if !ok {
			conn = &ConnectionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Connections[event.ConnectionID] = conn
		}
		conn.Events++
		if event.Timestamp.After(conn.LastSeen) {
			conn.LastSeen = event.Timestamp
		}
		if event.Peer != "" && conn.Peer == "" {
			conn.Peer = event.Peer
		}
	}

	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if !stats.TimeRange.Start.IsZero() {
		fmt.Fprintf(w, "Time range:   %s to %s (%s)\n",
			stats.TimeRange.Start.UTC().Format(time.RFC3339),
			stats.TimeRange.End.UTC().Format(time.RFC3339),
			stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
	}

	fmt.Fprintln(w, "\nBy category:")
	for _, category := range []log.Category{log.CategoryControl, log.CategoryData, log.CategoryState, log.CategoryError} {
		if n := stats.EventsByCategory[category]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", category, n)
		}
	}

	fmt.Fprintln(w, "\nBy direction:")
	for _, direction := range []log.Direction{log.DirectionIn, log.DirectionOut, log.DirectionNone} {
		if n := stats.EventsByDirection[direction]; n > 0 {
			fmt.Fprintf(w, "  %-5s %d\n", direction, n)
		}
	}

	fmt.Fprintf(w, "\nData: %d bytes in, %d bytes out\n", stats.DataBytesIn, stats.DataBytesOut)
	fmt.Fprintf(w, "Errors: %d\n", stats.Errors)

	connIDs := make([]string, 0, len(stats.Connections))
	for id := range stats.Connections {
		connIDs = append(connIDs, id)
	}
	sort.Strings(connIDs)

	fmt.Fprintf(w, "\nConnections: %d\n", len(connIDs))
	for _, id := range connIDs {
		conn := stats.Connections[id]
		fmt.Fprintf(w, "  %s  peer=%s events=%d duration=%s\n",
			shortenConnID(id), conn.Peer, conn.Events,
			conn.LastSeen.Sub(conn.FirstSeen).Round(time.Millisecond))
	}
	return nil
}
