// Package discovery implements mDNS advertisement and browsing for
// SEAM peers.
//
// A node advertises a single "_seam._udp" service whose instance name
// carries the peer fingerprint and whose TXT records carry the peer
// address. Browsers resolve discovered peers to host addresses and
// ports suitable for the UDP transport's peer table.
package discovery
