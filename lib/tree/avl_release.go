//go:build !avldebug

package tree

const defaultInvariantChecks = false
