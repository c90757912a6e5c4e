// Package scheduler runs the delayed transitions of live conversations.
//
// Timer is the production implementation. Manual replaces it in tests with a
// virtual clock that only moves when told to.
package scheduler
