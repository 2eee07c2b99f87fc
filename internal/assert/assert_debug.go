//go:build debug

package assert

import "fmt"

// Enabled reports whether assertions are compiled in.
const Enabled = true

// Assert panics with the formatted message if test is false, matching §7's
// "invariant violations in debug builds: assertions halt" contract.
func Assert(test bool, msg string, a ...interface{}) {
	if !test {
		panic(fmt.Sprintf(msg, a...))
	}
}
