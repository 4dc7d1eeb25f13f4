// Package session builds the ordered list of steps a learner works through in
// one study session and drives it while answers come in.
//
// A session interleaves three kinds of steps: introductions of new words with
// their first exercise and a later reinforcement, spaced reviews of due words,
// and recognition retries inserted shortly after every failed answer. The
// package is synchronous and holds no locks; a Session belongs to a single
// goroutine.
package session
