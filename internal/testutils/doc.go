// Package testutils provides helpers shared by tests across the codebase.
//
// # Test Domain Entities
//
// Fixtures are built with functional options:
//
//	word := testutils.MustCreateWordForTest(t, testutils.WithRaw("كتاب"))
//	state := testutils.MustCreateStateForTest(t, word.ID,
//	    testutils.WithInterval(21),
//	    testutils.WithStreak(3),
//	)
//
// # In-memory Stores
//
// MemStores implements every store interface on maps, for service and task
// tests that do not need SQL. Failures can be injected per method:
//
//	stores := testutils.NewMemStores()
//	stores.States.FailPut(errors.New("disk full"), 2)
package testutils
