// Package log defines the injected observability collaborator for SEAM.
//
// The connection layer never logs to global state. Every component
// accepts a Logger and emits structured Events describing control
// messages, state transitions, data flow, and errors. Applications
// decide what to do with events: discard them (NoopLogger), print
// them during development (SlogAdapter), or fan them out to several
// sinks (MultiLogger).
//
// Events use CBOR integer keys so they can be persisted compactly by
// file-based sinks.
package log
