package terminal

import (
	"slices"

	"github.com/CoderDKai/workhorse/internal/domain"
)

// history is a bounded scrollback. When an append takes it above max, the
// oldest batch records are dropped at once.
type history struct {
	max   int
	batch int
}

// append adds records to h and returns the trimmed result.
func (p history) append(h []domain.TerminalOutput, records ...domain.TerminalOutput) []domain.TerminalOutput {
	for _, rec := range records {
		h = append(h, rec)
		if len(h) > p.max {
			h = slices.Delete(h, 0, min(p.batch, len(h)))
		}
	}
	return h
}
