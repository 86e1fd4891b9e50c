package migration

import (
	"context"
	"fmt"
)

// ErrPhaseErrors marks a run stopped because an earlier phase reported row
// errors. Later phases build their ID maps from the earlier phases' output,
// so running them against incomplete data would silently misclassify rows
// as orphans.
type ErrPhaseErrors struct {
	Phase  string
	Errors int
}

func (e *ErrPhaseErrors) Error() string {
	return fmt.Sprintf("phase %s reported %d row errors, not continuing", e.Phase, e.Errors)
}

// Run executes every phase in dependency order, stopping before a phase
// whose predecessor reported errors. Orphans and skips never stop a run.
func (i *Importer) Run(ctx context.Context) ([]*Summary, error) {
	phases := []func(context.Context) (*Summary, error){
		i.ImportReference,
		i.ImportBlocks,
		i.ImportPlantings,
		i.ImportHistory,
	}

	var summaries []*Summary
	for _, phase := range phases {
		summary, err := phase(ctx)
		if summary != nil {
			summaries = append(summaries, summary)
		}
		if err != nil {
			return summaries, err
		}
		if summary.Errors > 0 {
			return summaries, &ErrPhaseErrors{Phase: summary.Phase, Errors: summary.Errors}
		}
	}
	return summaries, nil
}
