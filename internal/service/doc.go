// Package service exposes the packet decoder over WebSocket.
//
// A Server listens on HTTP and upgrades requests to /decode into WebSocket
// connections. Each text or binary message carries one transmission, either
// as bare hex digits or as a JSON request:
//
//	9C0141080250320F1802104A08
//	{"id": "q1", "hex": "9C0141080250320F1802104A08"}
//
// and is answered with one JSON Response:
//
//	{"id":"q1","ok":true,"version_sum":20,"value":1,"bits":104,"padding":2,"packets":[...]}
//
// Decode failures are reported in-band with ok=false plus error and
// error_type fields; the connection stays open. GET /healthz answers "ok".
//
// With Config.RateLimit set, each client host gets a token bucket; requests
// beyond it are answered with error_type "rate_limited".
//
// When Config.Advertise is set the server registers itself over mDNS via the
// discovery package so `pktdecode scan` can find it.
//
// Client is the matching dialer used by `pktdecode remote`.
package service
