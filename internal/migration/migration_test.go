package migration_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone-hq/fieldstone/internal/migration"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

func writeTable(t *testing.T, dir, table string, rows any) {
	t.Helper()
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, table+".json"), data, 0o644))
}

func quietLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func testContext() context.Context {
	return composables.WithTenantID(context.Background(), uuid.New())
}

func newTestImporter(dir string, repos migration.Repositories, ledger migration.Ledger, opts ...migration.Option) *migration.Importer {
	return migration.NewImporter(migration.NewSource(dir), repos, ledger, quietLog(), opts...)
}

func TestImportReference_SequencesFarmCodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rows := make([]migration.FarmRow, 0, 7)
	for n := 0; n < 7; n++ {
		rows = append(rows, migration.FarmRow{
			ID:   uuid.NewString(),
			Name: "Farm " + string(rune('A'+n)),
		})
	}
	writeTable(t, dir, migration.TableFarms, rows)

	repos, _, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())

	summary, err := imp.ImportReference(testContext())
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Imported)
	assert.Zero(t, summary.Errors)

	farms, err := repos.Farms.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, farms, 7)
	want := []string{"F001", "F002", "F003", "F004", "F005", "F006", "F007"}
	for n, f := range farms {
		assert.Equal(t, want[n], f.Code())
		assert.Equal(t, rows[n].ID, f.LegacyID())
	}
}

func TestImportReference_SkipsIncompleteRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: uuid.NewString(), Name: "Valley"},
		{ID: "", Name: "No ID"},
		{ID: uuid.NewString(), Name: ""},
	})
	writeTable(t, dir, migration.TableClients, []migration.ClientRow{
		{ID: uuid.NewString(), Name: "Fresh Produce Ltd", Phone: "021"},
	})

	repos, _, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())

	summary, err := imp.ImportReference(testContext())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Errors)
	assert.Equal(t, 1, summary.PerTable[migration.TableFarms].Imported)
	assert.Equal(t, 2, summary.PerTable[migration.TableFarms].Skipped)

	customers, err := repos.Customers.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "C001", customers[0].Code())
}

func TestImportReference_RerunSkipsEverything(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: uuid.NewString(), Name: "North"},
		{ID: uuid.NewString(), Name: "South"},
	})

	repos, _, _, _, _ := newMemRepos()
	ledger := newMemLedger()
	imp := newTestImporter(dir, repos, ledger)
	ctx := testContext()

	first, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Imported)

	second, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 2, second.Skipped)

	count, err := repos.Farms.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestImportBlocks_AssignsPerFarmSequence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	farmID := uuid.NewString()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: farmID, Name: "Lone Willow"},
	})
	writeTable(t, dir, migration.TableBlocks, []migration.BlockRow{
		{ID: uuid.NewString(), FarmDetailsRef: farmID, BlockCode: "LW-09", TotalArea: 1500, TotalDrips: 3000},
		{ID: uuid.NewString(), FarmDetailsRef: farmID, BlockCode: "LW-10", TotalArea: 2000, TotalDrips: 4000},
	})

	repos, blocks, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())
	ctx := testContext()

	_, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	summary, err := imp.ImportBlocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)

	physical, err := blocks.GetPhysical(context.Background())
	require.NoError(t, err)
	require.Len(t, physical, 2)
	assert.Equal(t, "F001-01", physical[0].BlockCode())
	assert.Equal(t, "F001-02", physical[1].BlockCode())
	assert.Equal(t, "LW-10", physical[1].LegacyCode())
	assert.Equal(t, 2000.0, physical[1].AvailableArea())
	assert.Equal(t, block.StateEmpty, physical[1].State())
}

func TestImportBlocks_UnknownFarmRefIsAnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTable(t, dir, migration.TableBlocks, []migration.BlockRow{
		{ID: uuid.NewString(), FarmDetailsRef: uuid.NewString(), BlockCode: "LW-10", TotalArea: 2000, TotalDrips: 4000},
	})

	repos, blocks, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())

	summary, err := imp.ImportBlocks(testContext())
	require.NoError(t, err)
	assert.Zero(t, summary.Imported)
	assert.Equal(t, 1, summary.Errors)

	physical, err := blocks.GetPhysical(context.Background())
	require.NoError(t, err)
	assert.Empty(t, physical)
}

func seedOneBlock(t *testing.T, dir string) {
	t.Helper()
	farmID := uuid.NewString()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: farmID, Name: "Lone Willow"},
	})
	writeTable(t, dir, migration.TableBlocks, []migration.BlockRow{
		{ID: uuid.NewString(), FarmDetailsRef: farmID, BlockCode: "LW-10", TotalArea: 2000, TotalDrips: 4000},
	})
}

func TestImportPlantings_AllocatesAreaByDripShare(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedOneBlock(t, dir)
	writeTable(t, dir, migration.TablePlantings, []migration.PlantingRow{
		{ID: uuid.NewString(), BlockCode: "LW-10", Item: "Gem Squash", Season: "2019/20", Drips: 1000, PlantedAt: "2019-10-02"},
	})

	repos, blocks, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())
	ctx := testContext()

	_, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	_, err = imp.ImportBlocks(ctx)
	require.NoError(t, err)
	summary, err := imp.ImportPlantings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Zero(t, summary.Orphans)

	virtual, err := blocks.GetVirtual(context.Background())
	require.NoError(t, err)
	require.Len(t, virtual, 1)
	child := virtual[0]
	assert.Equal(t, "F001-01-001", child.BlockCode())
	assert.Equal(t, 500.0, child.AllocatedArea())
	assert.Equal(t, "Gem Squash", child.Crop())
	assert.Equal(t, "2019-10-02", child.PlantedAt().Format("2006-01-02"))

	parent, err := blocks.GetByLegacyCode(context.Background(), "LW-10")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, parent.AvailableArea())
	assert.Equal(t, 1, parent.VirtualCounter())
	assert.Equal(t, block.StatePartial, parent.State())
	assert.Equal(t, []uuid.UUID{child.ID()}, parent.ChildBlockIDs())
}

func TestImportPlantings_UnmatchedCodeIsAnOrphan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedOneBlock(t, dir)
	writeTable(t, dir, migration.TablePlantings, []migration.PlantingRow{
		{ID: uuid.NewString(), BlockCode: "S.NHY 428-001", Item: "Butternut", Drips: 500},
	})

	repos, blocks, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())
	ctx := testContext()

	_, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	_, err = imp.ImportBlocks(ctx)
	require.NoError(t, err)
	summary, err := imp.ImportPlantings(ctx)
	require.NoError(t, err)

	assert.Zero(t, summary.Imported)
	assert.Equal(t, 1, summary.Orphans)
	assert.Zero(t, summary.Errors)

	virtual, err := blocks.GetVirtual(context.Background())
	require.NoError(t, err)
	assert.Empty(t, virtual)
}

func TestImportPlantings_RerunLeavesParentUntouched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedOneBlock(t, dir)
	writeTable(t, dir, migration.TablePlantings, []migration.PlantingRow{
		{ID: uuid.NewString(), BlockCode: "LW-10", Item: "Gem Squash", Drips: 1000},
	})

	repos, blocks, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())
	ctx := testContext()

	_, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	_, err = imp.ImportBlocks(ctx)
	require.NoError(t, err)
	_, err = imp.ImportPlantings(ctx)
	require.NoError(t, err)

	second, err := imp.ImportPlantings(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 1, second.Skipped)

	virtual, err := blocks.GetVirtual(context.Background())
	require.NoError(t, err)
	assert.Len(t, virtual, 1)

	parent, err := blocks.GetByLegacyCode(context.Background(), "LW-10")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, parent.AvailableArea())
	assert.Equal(t, 1, parent.VirtualCounter())
}

func TestImportHistory_ResolvesBlockRefs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	farmID := uuid.NewString()
	blockRowID := uuid.NewString()
	plantingRowID := uuid.NewString()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: farmID, Name: "Lone Willow"},
	})
	writeTable(t, dir, migration.TableBlocks, []migration.BlockRow{
		{ID: blockRowID, FarmDetailsRef: farmID, BlockCode: "LW-10", TotalArea: 2000, TotalDrips: 4000},
	})
	writeTable(t, dir, migration.TablePlantings, []migration.PlantingRow{
		{ID: plantingRowID, BlockCode: "LW-10", Item: "Gem Squash", Drips: 1000},
	})
	writeTable(t, dir, migration.TableHarvests, []migration.HarvestRow{
		{
			ID:           uuid.NewString(),
			FarmBlockRef: plantingRowID,
			MainBlockRef: blockRowID,
			BlockCode:    "LW-10",
			Item:         "Gem Squash",
			Quantity:     840,
			Grade:        "A",
			HarvestedAt:  "2020-01-15",
		},
	})
	writeTable(t, dir, migration.TableHistory, []migration.HistoryRow{
		// Legacy rows with null refs still carry the code string.
		{ID: uuid.NewString(), BlockCode: "LW-10", Activity: "spray", RecordedAt: "2019-11-01"},
	})

	repos, blocks, archives, harvests, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())
	ctx := testContext()

	_, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	_, err = imp.ImportBlocks(ctx)
	require.NoError(t, err)
	_, err = imp.ImportPlantings(ctx)
	require.NoError(t, err)
	summary, err := imp.ImportHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	assert.Zero(t, summary.Errors)

	parent, err := blocks.GetByLegacyCode(context.Background(), "LW-10")
	require.NoError(t, err)
	virtual, err := blocks.GetVirtual(context.Background())
	require.NoError(t, err)
	require.Len(t, virtual, 1)

	require.Len(t, harvests.records, 1)
	h := harvests.records[0]
	assert.Equal(t, virtual[0].ID(), h.VirtualBlockID)
	assert.Equal(t, parent.ID(), h.PhysicalBlockID)
	assert.Equal(t, "840", h.Quantity.String())

	require.Len(t, archives.records, 1)
	a := archives.records[0]
	assert.Equal(t, uuid.Nil, a.VirtualBlockID)
	assert.Equal(t, uuid.Nil, a.PhysicalBlockID)
	assert.Equal(t, "LW-10", a.LegacyBlockCode)
	assert.Equal(t, "spray", a.Activity)
}

func TestImportHistory_MatchesPricesByCustomerName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exactID := uuid.NewString()
	longID := uuid.NewString()
	writeTable(t, dir, migration.TableClients, []migration.ClientRow{
		{ID: exactID, Name: "Fresh Produce Ltd"},
		{ID: longID, Name: "Joburg Market Fresh Produce Agents (Pty) Ltd"},
	})
	writeTable(t, dir, migration.TablePrices, []migration.PriceRow{
		{ID: uuid.NewString(), ClientName: "Fresh Produce Ltd", Item: "Gem Squash", Price: 4.50, PricedAt: "2020-01-01"},
		{ID: uuid.NewString(), ClientName: "joburg market fresh produce", Item: "Butternut", Price: 6.25},
		{ID: uuid.NewString(), ClientName: "Unknown Trader", Item: "Butternut", Price: 5},
	})

	repos, _, _, _, prices := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())
	ctx := testContext()

	_, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	summary, err := imp.ImportHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)

	customers, err := repos.Customers.GetAll(context.Background())
	require.NoError(t, err)
	byLegacy := make(map[string]uuid.UUID)
	for _, c := range customers {
		byLegacy[c.LegacyID()] = c.ID()
	}

	require.Len(t, prices.records, 3)
	assert.Equal(t, byLegacy[exactID], prices.records[0].CustomerID)
	assert.Equal(t, "4.5", prices.records[0].Price.String())
	assert.Equal(t, byLegacy[longID], prices.records[1].CustomerID)
	assert.Equal(t, uuid.Nil, prices.records[2].CustomerID)
	assert.Equal(t, "Unknown Trader", prices.records[2].CustomerName)
}

func TestRun_StopsAfterPhaseWithErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: uuid.NewString(), Name: "Lone Willow"},
	})
	writeTable(t, dir, migration.TableBlocks, []migration.BlockRow{
		{ID: uuid.NewString(), FarmDetailsRef: uuid.NewString(), BlockCode: "LW-10", TotalArea: 2000, TotalDrips: 4000},
	})
	writeTable(t, dir, migration.TablePlantings, []migration.PlantingRow{
		{ID: uuid.NewString(), BlockCode: "LW-10", Item: "Gem Squash", Drips: 1000},
	})

	repos, blocks, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())

	summaries, err := imp.Run(testContext())
	var phaseErr *migration.ErrPhaseErrors
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, migration.PhaseBlocks, phaseErr.Phase)
	assert.Equal(t, 1, phaseErr.Errors)
	require.Len(t, summaries, 2)
	assert.Equal(t, migration.PhaseReference, summaries[0].Phase)
	assert.Equal(t, migration.PhaseBlocks, summaries[1].Phase)

	// The plantings phase never ran.
	virtual, err := blocks.GetVirtual(context.Background())
	require.NoError(t, err)
	assert.Empty(t, virtual)
}

func TestRun_CompletePipeline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	farmID := uuid.NewString()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: farmID, Name: "Lone Willow"},
	})
	writeTable(t, dir, migration.TableBlocks, []migration.BlockRow{
		{ID: uuid.NewString(), FarmDetailsRef: farmID, BlockCode: "LW-10", TotalArea: 2000, TotalDrips: 4000},
	})
	writeTable(t, dir, migration.TablePlantings, []migration.PlantingRow{
		{ID: uuid.NewString(), BlockCode: "LW-10", Item: "Gem Squash", Drips: 1000},
		{ID: uuid.NewString(), BlockCode: "S.NHY 428-001", Item: "Butternut", Drips: 500},
	})

	repos, blocks, _, _, _ := newMemRepos()
	imp := newTestImporter(dir, repos, newMemLedger())

	summaries, err := imp.Run(testContext())
	require.NoError(t, err)
	require.Len(t, summaries, 4)
	assert.Equal(t, 1, summaries[2].Imported)
	assert.Equal(t, 1, summaries[2].Orphans)

	parent, err := blocks.GetByLegacyCode(context.Background(), "LW-10")
	require.NoError(t, err)
	children, err := blocks.GetChildren(context.Background(), parent.ID())
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.InDelta(t, parent.TotalArea(), parent.AvailableArea()+children[0].AllocatedArea(), 0.001)
}

func TestDryRun_WritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: uuid.NewString(), Name: "Lone Willow"},
	})

	repos, _, _, _, _ := newMemRepos()
	ledger := newMemLedger()
	imp := newTestImporter(dir, repos, ledger, migration.WithDryRun(true))

	summary, err := imp.ImportReference(testContext())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)

	count, err := repos.Farms.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, ledger.seen)
}

func TestImportReference_SurvivesLedgerLoss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	farmID := uuid.NewString()
	writeTable(t, dir, migration.TableFarms, []migration.FarmRow{
		{ID: farmID, Name: "Lone Willow"},
	})

	repos, _, _, _, _ := newMemRepos()
	ctx := testContext()

	first, err := newTestImporter(dir, repos, newMemLedger()).ImportReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)

	// A fresh ledger simulates losing import_ledger between runs. The
	// stored legacy UUID must still prevent a second farm.
	fresh := newMemLedger()
	second, err := newTestImporter(dir, repos, fresh).ImportReference(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 1, second.Skipped)

	farms, err := repos.Farms.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, farms, 1)
	assert.Equal(t, "F001", farms[0].Code())

	seen, err := fresh.Seen(ctx, migration.PhaseReference, migration.TableFarms, farmID)
	require.NoError(t, err)
	assert.True(t, seen, "skip should backfill the ledger")
}

func TestImportBlocks_SurvivesLedgerLoss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedOneBlock(t, dir)

	repos, blocks, _, _, _ := newMemRepos()
	ctx := testContext()

	imp := newTestImporter(dir, repos, newMemLedger())
	_, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	_, err = imp.ImportBlocks(ctx)
	require.NoError(t, err)

	second, err := newTestImporter(dir, repos, newMemLedger()).ImportBlocks(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 1, second.Skipped)

	physical, err := blocks.GetPhysical(context.Background())
	require.NoError(t, err)
	require.Len(t, physical, 1)
	assert.Equal(t, "F001-01", physical[0].BlockCode())
}

func TestImportHistory_SurvivesLedgerLoss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedOneBlock(t, dir)
	writeTable(t, dir, migration.TableHistory, []migration.HistoryRow{
		{ID: uuid.NewString(), BlockCode: "LW-10", Activity: "spray", RecordedAt: "2019-11-01"},
	})
	writeTable(t, dir, migration.TableHarvests, []migration.HarvestRow{
		{ID: uuid.NewString(), BlockCode: "LW-10", Item: "Gem Squash", Quantity: 840, HarvestedAt: "2020-01-15"},
	})
	writeTable(t, dir, migration.TablePrices, []migration.PriceRow{
		{ID: uuid.NewString(), ClientName: "Fresh Produce Ltd", Item: "Gem Squash", Price: 4.5, PricedAt: "2020-01-10"},
	})

	repos, _, archives, harvests, prices := newMemRepos()
	ctx := testContext()

	imp := newTestImporter(dir, repos, newMemLedger())
	_, err := imp.ImportReference(ctx)
	require.NoError(t, err)
	_, err = imp.ImportBlocks(ctx)
	require.NoError(t, err)
	first, err := imp.ImportHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Imported)

	second, err := newTestImporter(dir, repos, newMemLedger()).ImportHistory(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 3, second.Skipped)
	assert.Zero(t, second.Errors)

	assert.Len(t, archives.records, 1)
	assert.Len(t, harvests.records, 1)
	assert.Len(t, prices.records, 1)
}
