// Package task runs background work off the request path: writing review
// states after each answer and enriching words. Events from the events
// package are turned into tasks by EventHandler, queued on a bounded
// TaskQueue and executed by a WorkerPool.
//
// Tasks live in memory only. A write that is lost because the process stops
// is superseded by the next write for the same review state.
package task
