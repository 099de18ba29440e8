// Package wire defines the SEAM control-message encoding and frame
// tagging.
//
// The connection layer exchanges two kinds of traffic with a peer:
// control messages (connect/accept/disconnect/too-many-peers) that
// drive the connection state machine, and opaque application payload.
// Substrates with a typed send/receive API keep the two apart natively;
// substrates that only move raw datagrams (e.g. UDP) use the one-byte
// frame tag defined here to reproduce the same demultiplexing.
//
// # Control Messages
//
// Control messages are CBOR maps with integer keys:
//
//	{
//	  1: type    // uint8: 1=Connect, 2=Accept, 3=Disconnect, 4=TooManyPeers
//	}
//
// The sender identity is implicit: it is supplied by the substrate's
// delivery callback, never carried in the message body.
//
// # Frames
//
//	control frame: [TagControl][CBOR control message]
//	data frame:    [TagData][channel][payload...]
//
// The tag is consumed before any payload interpretation.
package wire
