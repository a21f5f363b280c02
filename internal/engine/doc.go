// Package engine defines the grammar/style checking contract and ships
// a small built-in rule checker.
//
// A Checker runs synchronously over the whole text and reports issues
// as byte spans over the UTF-8 input; translation to UI positions
// happens downstream. Checkers are expected to be deterministic and to
// finish well inside the check scheduler's debounce window.
package engine
