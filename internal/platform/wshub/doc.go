// Package wshub pushes task completion events to WebSocket subscribers.
//
// A Hub is registered with the dispatcher as an event handler. Each
// connected client owns a bounded send buffer drained by its own writer
// goroutine, so a slow client loses messages instead of slowing workers.
package wshub
