// Package integration runs mktrend end to end: a full Application on a real
// listener, driven over HTTP and the websocket progress feed.
package integration
