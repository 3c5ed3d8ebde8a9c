// Package events provides the types and registry used to tell observers that
// a task finished.
//
// The scheduler emits a CompletionEvent for every task that reaches a
// terminal state without knowing which subscribers will receive it, which
// keeps the worker pool free of transport concerns.
//
// The primary components are:
// - CompletionEvent: Fact that a task finished, with its terminal status
// - EventHandler: Interface for components that receive events
// - InMemoryEventEmitter: Concurrency-safe registry that fans events out
package events
