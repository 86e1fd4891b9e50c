package backup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone-hq/fieldstone/internal/backup"
)

func makeBackupDir(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.Mkdir(dir, 0o755))
	return dir
}

func TestTierFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		at   time.Time
		want backup.Tier
	}{
		{"first of month", time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC), backup.TierMonthly},
		{"first of month on weekly day", time.Date(2026, 2, 1, 2, 0, 0, 0, time.UTC), backup.TierMonthly},
		{"sunday", time.Date(2026, 3, 8, 2, 0, 0, 0, time.UTC), backup.TierWeekly},
		{"plain weekday", time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC), backup.TierDaily},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, backup.TierFor(tc.at, time.Sunday))
		})
	}
}

func TestTag_ReplacesOldMarker(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := makeBackupDir(t, root, "2026-03-08T02-00-00")

	tier, err := backup.Tag(dir, time.Date(2026, 3, 8, 2, 0, 0, 0, time.UTC), time.Sunday)
	require.NoError(t, err)
	assert.Equal(t, backup.TierWeekly, tier)

	// Re-tagging for a different date leaves exactly one marker behind.
	tier, err = backup.Tag(dir, time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC), time.Sunday)
	require.NoError(t, err)
	assert.Equal(t, backup.TierDaily, tier)

	_, err = os.Stat(filepath.Join(dir, ".retain-daily"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".retain-weekly"))
	assert.True(t, os.IsNotExist(err))
}

func TestTag_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := backup.Tag(filepath.Join(t.TempDir(), "absent"), time.Now(), time.Sunday)
	assert.Error(t, err)
}

func TestScan_SkipsUntaggedAndSortsNewestFirst(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"2026-03-02T02-00-00", "2026-03-03T02-00-00"} {
		dir := makeBackupDir(t, root, name)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".retain-daily"), nil, 0o644))
	}
	makeBackupDir(t, root, "in-progress")

	backups, err := backup.Scan(root)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, "2026-03-03T02-00-00", backups[0].Name)
	assert.Equal(t, "2026-03-02T02-00-00", backups[1].Name)
}

func TestPrune_KeepsNewestPerTier(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	policy := backup.Policy{KeepDaily: 2, KeepWeekly: 1, KeepMonthly: 1, WeeklyDay: time.Sunday}

	tag := func(name string, tier backup.Tier) string {
		dir := makeBackupDir(t, root, name)
		marker := ".retain-" + string(tier)
		require.NoError(t, os.WriteFile(filepath.Join(dir, marker), nil, 0o644))
		return dir
	}

	tag("2026-03-04T02-00-00", backup.TierDaily)
	tag("2026-03-05T02-00-00", backup.TierDaily)
	oldDaily := tag("2026-03-03T02-00-00", backup.TierDaily)
	tag("2026-03-08T02-00-00", backup.TierWeekly)
	oldWeekly := tag("2026-03-01T02-00-00", backup.TierWeekly)
	tag("2026-02-01T02-00-00", backup.TierMonthly)

	removed, err := backup.Prune(root, policy)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{oldDaily, oldWeekly}, removed)

	backups, err := backup.Scan(root)
	require.NoError(t, err)
	assert.Len(t, backups, 4)
	for _, b := range backups {
		_, err := os.Stat(b.Path)
		assert.NoError(t, err)
	}
}

func TestPrune_ZeroKeepRemovesTier(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := makeBackupDir(t, root, "2026-03-03T02-00-00")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".retain-daily"), nil, 0o644))

	removed, err := backup.Prune(root, backup.Policy{KeepDaily: 0, KeepWeekly: 1, KeepMonthly: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, removed)
}
