// Package tools provides reusable runtime helpers shared by the launcher
// and the schema/setup tooling.
//
// Ownership boundary:
// - command execution helpers
//
// - exit-code normalization rules
package tools
