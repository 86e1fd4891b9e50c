package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
)

// ImportPlantings resolves active-planting rows into virtual blocks. The
// legacy table denormalizes the parent's block code instead of storing a
// foreign key, so parents are resolved by code string equality against a
// map built once at phase start; every row after that consumes IDs only.
//
// A row whose code matches no physical block is an orphan: counted and
// skipped, never fatal. The child insert and the parent update land in one
// transaction so the parent's counter and available area always reflect the
// inserted cycles, even across interrupted runs.
func (i *Importer) ImportPlantings(ctx context.Context) (*Summary, error) {
	summary := newSummary(PhasePlantings)

	rows, err := i.src.Plantings()
	if err != nil {
		return summary, err
	}

	physical, err := i.repos.Blocks.GetPhysical(ctx)
	if err != nil {
		return summary, fmt.Errorf("load physical blocks: %w", err)
	}
	parentsByCode := make(map[string]block.Block, len(physical))
	for _, b := range physical {
		if b.LegacyCode() != "" {
			parentsByCode[b.LegacyCode()] = b
		}
	}

	virtual, err := i.repos.Blocks.GetVirtual(ctx)
	if err != nil {
		return summary, fmt.Errorf("load virtual blocks: %w", err)
	}
	existingByCode := make(map[string]struct{}, len(virtual))
	for _, b := range virtual {
		if b.LegacyCode() != "" {
			existingByCode[b.LegacyCode()] = struct{}{}
		}
	}

	for n, row := range rows {
		i.progress(TablePlantings, n, len(rows))

		code := strings.TrimSpace(row.BlockCode)
		if strings.TrimSpace(row.ID) == "" || code == "" {
			i.log.WithField("table", TablePlantings).WithField("row", n).Warn("row missing required fields, skipped")
			summary.skipped(TablePlantings)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhasePlantings, TablePlantings, row.ID)
		if err != nil {
			return summary, err
		}
		if seen {
			summary.skipped(TablePlantings)
			continue
		}
		if _, ok := existingByCode[code]; ok {
			// The cycle survived an earlier run whose ledger entry was
			// lost. Backfill the ledger instead of re-importing.
			if !i.dryRun {
				if err := i.ledger.Record(ctx, PhasePlantings, TablePlantings, row.ID); err != nil {
					return summary, err
				}
			}
			summary.skipped(TablePlantings)
			continue
		}

		parent, ok := parentsByCode[code]
		if !ok {
			i.log.WithFields(logrus.Fields{
				"table":     TablePlantings,
				"legacyId":  row.ID,
				"blockCode": code,
			}).Warn("no parent block for planting, orphaned")
			summary.orphan(TablePlantings)
			continue
		}

		allocated := parent.AllocationFor(row.Drips)
		child := block.NewVirtual(parent, code, row.Item, row.Season, parseDate(row.PlantedAt), allocated)
		updatedParent := parent.WithChild(child.ID(), allocated)

		if !i.dryRun {
			if _, err := i.repos.Blocks.CreatePlanting(ctx, child, updatedParent); err != nil {
				i.log.WithError(err).WithField("legacyId", row.ID).Error("planting insert failed")
				summary.failed(TablePlantings)
				continue
			}
			if err := i.ledger.Record(ctx, PhasePlantings, TablePlantings, row.ID); err != nil {
				return summary, err
			}
		}
		parentsByCode[parent.LegacyCode()] = updatedParent
		existingByCode[code] = struct{}{}
		summary.imported(TablePlantings)
	}
	return summary, nil
}
