// Package netclient builds the HTTP clients used for upstream requests.
//
// Every call gets a fresh client with its own transport and keep-alives
// disabled, so no connection outlives the request that opened it. Traffic can
// optionally be routed through a SOCKS5 proxy when the aggregator or the
// retail site blocks the host's address.
package netclient
