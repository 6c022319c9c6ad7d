//go:build avldebug

package tree

// Debug builds validate the whole tree around every mutation.
const defaultInvariantChecks = true
