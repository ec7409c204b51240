// Package events provides the domain event types and the in-process emitter
// connecting mutation hooks and the reminder scanner to the notification
// dispatcher.
//
// Emission is synchronous: EmitEvent returns only after every registered
// handler has run, so a mutation hook fired before the HTTP response is
// written guarantees the resulting notification row is visible to a client
// that polls immediately after the response.
package events
