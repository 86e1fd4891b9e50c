package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
)

// Tier is the retention class of one backup directory. Every tagged backup
// belongs to exactly one tier, recorded as an empty marker file inside the
// backup directory so the pruning side needs no database.
type Tier string

const (
	TierDaily   Tier = "daily"
	TierWeekly  Tier = "weekly"
	TierMonthly Tier = "monthly"
)

const (
	markerDaily   = ".retain-daily"
	markerWeekly  = ".retain-weekly"
	markerMonthly = ".retain-monthly"
)

func (t Tier) marker() string {
	switch t {
	case TierWeekly:
		return markerWeekly
	case TierMonthly:
		return markerMonthly
	default:
		return markerDaily
	}
}

// Policy is how many backups each tier retains and which weekday promotes
// a backup to the weekly tier.
type Policy struct {
	KeepDaily   int
	KeepWeekly  int
	KeepMonthly int
	WeeklyDay   time.Weekday
}

func PolicyFrom(opts configuration.BackupOptions) Policy {
	return Policy{
		KeepDaily:   opts.KeepDaily,
		KeepWeekly:  opts.KeepWeekly,
		KeepMonthly: opts.KeepMonthly,
		WeeklyDay:   time.Weekday(opts.WeeklyDay),
	}
}

func (p Policy) keep(tier Tier) int {
	switch tier {
	case TierWeekly:
		return p.KeepWeekly
	case TierMonthly:
		return p.KeepMonthly
	default:
		return p.KeepDaily
	}
}

// TierFor picks the highest tier a backup taken at the given time qualifies
// for: monthly on the first of the month, weekly on the configured weekday,
// daily otherwise.
func TierFor(at time.Time, weeklyDay time.Weekday) Tier {
	if at.Day() == 1 {
		return TierMonthly
	}
	if at.Weekday() == weeklyDay {
		return TierWeekly
	}
	return TierDaily
}

// Tag writes the tier marker for one backup directory. Re-tagging replaces
// any previous marker so a retried tag run converges on one tier.
func Tag(dir string, at time.Time, weeklyDay time.Weekday) (Tier, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("backup dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("backup path %s is not a directory", dir)
	}

	tier := TierFor(at, weeklyDay)
	for _, marker := range []string{markerDaily, markerWeekly, markerMonthly} {
		if marker == tier.marker() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, marker)); err != nil && !os.IsNotExist(err) {
			return "", err
		}
	}
	if err := os.WriteFile(filepath.Join(dir, tier.marker()), nil, 0o644); err != nil {
		return "", fmt.Errorf("write marker: %w", err)
	}
	return tier, nil
}

// Backup is one tagged backup directory found under the backup root.
type Backup struct {
	Path string
	Name string
	Tier Tier
}

// Scan lists the tagged backup directories under root, newest first by
// directory name. Backup directories are named by dump timestamp, so the
// lexicographic order is the chronological order. Untagged directories are
// ignored rather than deleted.
func Scan(root string) ([]Backup, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("backup root: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		tier, ok := tierOf(dir)
		if !ok {
			continue
		}
		backups = append(backups, Backup{Path: dir, Name: entry.Name(), Tier: tier})
	}
	sort.Slice(backups, func(a, b int) bool { return backups[a].Name > backups[b].Name })
	return backups, nil
}

func tierOf(dir string) (Tier, bool) {
	for _, tier := range []Tier{TierMonthly, TierWeekly, TierDaily} {
		if _, err := os.Stat(filepath.Join(dir, tier.marker())); err == nil {
			return tier, true
		}
	}
	return "", false
}

// Prune removes backups beyond each tier's retained count, keeping the
// newest. It returns the paths it removed.
func Prune(root string, policy Policy) ([]string, error) {
	backups, err := Scan(root)
	if err != nil {
		return nil, err
	}

	counts := make(map[Tier]int)
	var removed []string
	for _, b := range backups {
		counts[b.Tier]++
		if counts[b.Tier] <= policy.keep(b.Tier) {
			continue
		}
		if err := os.RemoveAll(b.Path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", b.Path, err)
		}
		removed = append(removed, b.Path)
	}
	return removed, nil
}
