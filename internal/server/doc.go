// Package server exposes the HTTP control surface for the price service.
//
// It serves price lookups through the resolver chain, health and
// readiness information, and refresh control endpoints: a trigger that
// starts a catalog refresh run, a status snapshot, and a websocket feed
// that streams progress while a run is active.
package server
