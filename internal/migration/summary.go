package migration

// Phase names, in dependency order.
const (
	PhaseReference = "reference"
	PhaseBlocks    = "blocks"
	PhasePlantings = "plantings"
	PhaseHistory   = "history"
)

// Summary is the outcome of one phase. Skips and orphans are expected
// results of re-runs and dirty source data; only Errors marks a phase as
// having lost rows it should have imported.
type Summary struct {
	Phase    string           `json:"phase"`
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Orphans  int              `json:"orphans"`
	Errors   int              `json:"errors"`
	PerTable map[string]Tally `json:"per_table,omitempty"`
}

type Tally struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Orphans  int `json:"orphans"`
	Errors   int `json:"errors"`
}

func newSummary(phase string) *Summary {
	return &Summary{Phase: phase, PerTable: make(map[string]Tally)}
}

func (s *Summary) imported(table string) {
	s.Imported++
	t := s.PerTable[table]
	t.Imported++
	s.PerTable[table] = t
}

func (s *Summary) skipped(table string) {
	s.Skipped++
	t := s.PerTable[table]
	t.Skipped++
	s.PerTable[table] = t
}

func (s *Summary) orphan(table string) {
	s.Orphans++
	t := s.PerTable[table]
	t.Orphans++
	s.PerTable[table] = t
}

func (s *Summary) failed(table string) {
	s.Errors++
	t := s.PerTable[table]
	t.Errors++
	s.PerTable[table] = t
}
