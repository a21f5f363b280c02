// Package issues holds the UI-visible result of the latest grammar
// check: the issue list in UTF-16 code unit positions, derived
// statistics, and the document version the list belongs to. Lists are
// replaced wholesale per check cycle; there is no incremental diffing.
//
// The package also owns the transient issue highlight: selecting an
// issue shows a visual mark that clears itself after a dwell period,
// with the latest selection always winning.
package issues
