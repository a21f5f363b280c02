package app

import (
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/issues"
	"github.com/dshills/inkwell/internal/textspan"
)

// storeSink routes completed check cycles into the issue store.
type storeSink struct {
	store *issues.Store
}

func (s storeSink) ApplyCheck(version uint64, list []issues.Issue, stats engine.Stats) {
	s.store.Replace(version, list, stats)
}

// nopView is the highlight surface used when no UI is attached.
type nopView struct{}

func (nopView) ShowHighlight(textspan.Span) {}
func (nopView) ClearHighlight()             {}
