// Package transport defines the delivery-substrate boundary of SEAM
// and provides two substrate implementations.
//
// The connection layer never talks to the network directly. It sends
// through the Transport interface and receives through the Handler
// callback set, so any datagram-capable substrate can carry SEAM
// connections:
//
//   - Memory: an in-process substrate backed by a global registry,
//     for tests and examples.
//   - UDP: a real datagram substrate. UDP has no native separation of
//     control and data traffic, so every datagram carries the one-byte
//     frame tag from pkg/wire.
//
// # Delivery Semantics
//
// Substrates are unreliable by contract. The Delivery mode passed to
// SendData is a per-channel hint (reliable/ordered combinations) that
// substrates honor on a best-effort basis: Memory delivers everything
// reliably in order; UDP treats all modes as unreliable-ordered-by-
// arrival. Reliability beyond the substrate's native guarantees is
// explicitly out of scope for this layer.
//
// # Callback Context
//
// Handler callbacks run on the substrate's delivery goroutine, never
// on the caller's. Payload slices passed to OnDataReceived are only
// valid for the duration of the call; handlers that retain payload
// must copy it.
package transport
