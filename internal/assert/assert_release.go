//go:build !debug

// Package assert provides invariant checks that disappear entirely from
// release builds, grounded on frankkopp-FrankyGo/assert.
package assert

// Enabled reports whether assertions are compiled in. Callers still guard
// expensive argument construction with "if assert.Enabled { ... }" since Go
// always evaluates Assert's arguments even when the body is a no-op.
const Enabled = false

// Assert is a no-op in release builds; the build tag above strips the
// function body entirely, and the compiler folds away callers guarded by
// "if assert.Enabled".
func Assert(test bool, msg string, a ...interface{}) {}
