// Package config loads SEAM node configuration from YAML files.
//
// A configuration names the local peer identity and listen address,
// the remote peer to connect to, the connection tunables, and
// optional discovery and event logging. Loading applies defaults and
// validates peer addresses before anything touches the network.
package config
