// Package state owns the canonical spreadsheet state and its reducer.
//
// Reduce is a pure, total function: every action kind has defined
// behavior, unknown kinds return the state unchanged, and malformed
// payloads degrade to no-ops rather than errors. All mutation of the
// aggregate flows through Reduce; nothing else writes state.
//
// History is an append-on-mutation snapshot stack embedded in the state.
// Exactly one post-mutation snapshot is appended per user-intent-bearing
// action, enabling linear undo/redo with bounded retention.
package state
