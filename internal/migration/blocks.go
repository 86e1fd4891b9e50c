package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
)

// ImportBlocks turns legacy block templates into physical blocks. The
// farm reference is a real UUID foreign key, so an unresolvable farm is a
// row error, not an orphan.
func (i *Importer) ImportBlocks(ctx context.Context) (*Summary, error) {
	summary := newSummary(PhaseBlocks)

	rows, err := i.src.Blocks()
	if err != nil {
		return summary, err
	}

	// Resolve all farm references once up front; rows only consume the map.
	farms, err := i.repos.Farms.GetAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("load farms: %w", err)
	}
	farmsByLegacyID := make(map[string]farm.Farm, len(farms))
	for _, f := range farms {
		if f.LegacyID() != "" {
			farmsByLegacyID[f.LegacyID()] = f
		}
	}

	// Per-farm block sequence continues past previously imported parcels.
	physical, err := i.repos.Blocks.GetPhysical(ctx)
	if err != nil {
		return summary, fmt.Errorf("load physical blocks: %w", err)
	}
	seqByFarm := make(map[uuid.UUID]int)
	existingByCode := make(map[string]struct{}, len(physical))
	for _, b := range physical {
		seqByFarm[b.FarmID()]++
		if b.LegacyCode() != "" {
			existingByCode[b.LegacyCode()] = struct{}{}
		}
	}

	for n, row := range rows {
		i.progress(TableBlocks, n, len(rows))

		if strings.TrimSpace(row.ID) == "" {
			i.log.WithField("table", TableBlocks).WithField("row", n).Warn("row missing legacy id, skipped")
			summary.skipped(TableBlocks)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhaseBlocks, TableBlocks, row.ID)
		if err != nil {
			return summary, err
		}
		if seen {
			summary.skipped(TableBlocks)
			continue
		}
		if _, ok := existingByCode[strings.TrimSpace(row.BlockCode)]; ok {
			// The parcel survived an earlier run whose ledger entry was
			// lost. Backfill the ledger instead of re-importing.
			if !i.dryRun {
				if err := i.ledger.Record(ctx, PhaseBlocks, TableBlocks, row.ID); err != nil {
					return summary, err
				}
			}
			summary.skipped(TableBlocks)
			continue
		}

		f, ok := farmsByLegacyID[row.FarmDetailsRef]
		if !ok {
			i.log.WithFields(logrus.Fields{
				"table":    TableBlocks,
				"legacyId": row.ID,
				"farmRef":  row.FarmDetailsRef,
			}).Error("farm reference not found")
			summary.failed(TableBlocks)
			continue
		}

		seqByFarm[f.ID()]++
		if !i.dryRun {
			entity := block.NewPhysical(
				f.TenantID(), f.ID(), f.Code(), seqByFarm[f.ID()],
				row.BlockCode, row.TotalArea, row.TotalDrips,
			)
			if _, err := i.repos.Blocks.Create(ctx, entity); err != nil {
				i.log.WithError(err).WithField("legacyId", row.ID).Error("block insert failed")
				summary.failed(TableBlocks)
				seqByFarm[f.ID()]--
				continue
			}
			if err := i.ledger.Record(ctx, PhaseBlocks, TableBlocks, row.ID); err != nil {
				return summary, err
			}
		}
		if code := strings.TrimSpace(row.BlockCode); code != "" {
			existingByCode[code] = struct{}{}
		}
		summary.imported(TableBlocks)
	}
	return summary, nil
}
