// Package task implements the in-memory scheduler core: a thread-safe
// priority queue of pending tasks, a fixed pool of workers that drain it,
// a bounded completion history, and the sinks that tell observers a task
// finished. The Dispatcher binds these together behind Submit,
// PendingCount and CompletedSince.
package task
