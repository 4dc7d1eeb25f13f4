// Package events decouples the services that produce background work from the
// task machinery that performs it.
//
// The session service publishes a TaskRequestEvent after every completed
// exercise (persist the new review state) and the word service publishes one
// when a word should be enriched. Handlers registered with an EventEmitter turn
// those events into tasks. Neither side imports the other.
package events
