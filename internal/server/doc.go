// Package server implements the websocket transport of the room chat service.
//
// The implementation is organized into specialized files for configuration,
// the hub (which is the chat core's Broadcaster), clients, wire frames,
// routing, and HTTP handlers. Presence and routing decisions live in the chat
// package; this package only moves frames in and events out.
package server
