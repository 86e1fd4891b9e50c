package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/entities/archive"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

// ImportHistory loads the three append-only archive tables: block history,
// harvests and prices. Block references resolve through ID maps built once
// at phase start; an unresolvable reference stays Nil and the record is
// imported anyway, because historical facts are kept even when the source's
// referential integrity cannot be reconstructed. Prices join to customers
// by name: exact match first, then a case-insensitive substring match on
// the first 20 characters.
//
// Every record carries its source row UUID, which is unique per tenant, so
// a rerun whose ledger was lost skips on the duplicate insert instead of
// doubling history.
func (i *Importer) ImportHistory(ctx context.Context) (*Summary, error) {
	summary := newSummary(PhaseHistory)

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return summary, err
	}

	virtualByRef, physicalByRef, err := i.buildBlockRefMaps(ctx)
	if err != nil {
		return summary, err
	}

	if err := i.importBlockHistory(ctx, tenantID, summary, virtualByRef, physicalByRef); err != nil {
		return summary, err
	}
	if err := i.importHarvests(ctx, tenantID, summary, virtualByRef, physicalByRef); err != nil {
		return summary, err
	}
	if err := i.importPrices(ctx, tenantID, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// buildBlockRefMaps joins the legacy source UUIDs to the migrated blocks.
// The blocks themselves only carry legacy codes, so the join goes source
// row UUID -> legacy code -> block, built in one pass per table.
func (i *Importer) buildBlockRefMaps(ctx context.Context) (map[string]block.Block, map[string]block.Block, error) {
	physical, err := i.repos.Blocks.GetPhysical(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load physical blocks: %w", err)
	}
	physByCode := make(map[string]block.Block, len(physical))
	for _, b := range physical {
		if b.LegacyCode() != "" {
			physByCode[b.LegacyCode()] = b
		}
	}

	virtual, err := i.repos.Blocks.GetVirtual(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load virtual blocks: %w", err)
	}
	virtByCode := make(map[string]block.Block, len(virtual))
	for _, b := range virtual {
		if b.LegacyCode() != "" {
			virtByCode[b.LegacyCode()] = b
		}
	}

	blockRows, err := i.src.Blocks()
	if err != nil {
		return nil, nil, err
	}
	physicalByRef := make(map[string]block.Block)
	for _, row := range blockRows {
		if b, ok := physByCode[strings.TrimSpace(row.BlockCode)]; ok {
			physicalByRef[row.ID] = b
		}
	}

	plantingRows, err := i.src.Plantings()
	if err != nil {
		return nil, nil, err
	}
	virtualByRef := make(map[string]block.Block)
	for _, row := range plantingRows {
		if b, ok := virtByCode[strings.TrimSpace(row.BlockCode)]; ok {
			virtualByRef[row.ID] = b
		}
	}
	return virtualByRef, physicalByRef, nil
}

func (i *Importer) importBlockHistory(
	ctx context.Context,
	tenantID uuid.UUID,
	summary *Summary,
	virtualByRef map[string]block.Block,
	physicalByRef map[string]block.Block,
) error {
	rows, err := i.src.History()
	if err != nil {
		return err
	}

	for n, row := range rows {
		i.progress(TableHistory, n, len(rows))

		if strings.TrimSpace(row.ID) == "" {
			summary.skipped(TableHistory)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhaseHistory, TableHistory, row.ID)
		if err != nil {
			return err
		}
		if seen {
			summary.skipped(TableHistory)
			continue
		}

		record := archive.BlockArchive{
			ID:              uuid.New(),
			TenantID:        tenantID,
			LegacyID:        row.ID,
			LegacyBlockCode: strings.TrimSpace(row.BlockCode),
			Activity:        strings.TrimSpace(row.Activity),
			Payload:         row.Payload,
			RecordedAt:      parseDate(row.RecordedAt),
		}
		if b, ok := virtualByRef[row.FarmBlockRef]; ok {
			record.VirtualBlockID = b.ID()
		}
		if b, ok := physicalByRef[row.BlockStandardRef]; ok {
			record.PhysicalBlockID = b.ID()
		}

		if !i.dryRun {
			if _, err := i.repos.Archives.Create(ctx, record); err != nil {
				if errors.Is(err, archive.ErrDuplicate) {
					if err := i.ledger.Record(ctx, PhaseHistory, TableHistory, row.ID); err != nil {
						return err
					}
					summary.skipped(TableHistory)
					continue
				}
				i.log.WithError(err).WithField("legacyId", row.ID).Error("block history insert failed")
				summary.failed(TableHistory)
				continue
			}
			if err := i.ledger.Record(ctx, PhaseHistory, TableHistory, row.ID); err != nil {
				return err
			}
		}
		summary.imported(TableHistory)
	}
	return nil
}

func (i *Importer) importHarvests(
	ctx context.Context,
	tenantID uuid.UUID,
	summary *Summary,
	virtualByRef map[string]block.Block,
	physicalByRef map[string]block.Block,
) error {
	rows, err := i.src.Harvests()
	if err != nil {
		return err
	}

	for n, row := range rows {
		i.progress(TableHarvests, n, len(rows))

		if strings.TrimSpace(row.ID) == "" {
			summary.skipped(TableHarvests)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhaseHistory, TableHarvests, row.ID)
		if err != nil {
			return err
		}
		if seen {
			summary.skipped(TableHarvests)
			continue
		}

		record := archive.Harvest{
			ID:              uuid.New(),
			TenantID:        tenantID,
			LegacyID:        row.ID,
			LegacyBlockCode: strings.TrimSpace(row.BlockCode),
			Crop:            strings.TrimSpace(row.Item),
			Quantity:        decimal.NewFromFloat(row.Quantity),
			Grade:           strings.TrimSpace(row.Grade),
			HarvestedAt:     parseDate(row.HarvestedAt),
		}
		if b, ok := virtualByRef[row.FarmBlockRef]; ok {
			record.VirtualBlockID = b.ID()
		}
		if b, ok := physicalByRef[row.MainBlockRef]; ok {
			record.PhysicalBlockID = b.ID()
		}

		if !i.dryRun {
			if _, err := i.repos.Harvests.Create(ctx, record); err != nil {
				if errors.Is(err, archive.ErrDuplicate) {
					if err := i.ledger.Record(ctx, PhaseHistory, TableHarvests, row.ID); err != nil {
						return err
					}
					summary.skipped(TableHarvests)
					continue
				}
				i.log.WithError(err).WithField("legacyId", row.ID).Error("harvest insert failed")
				summary.failed(TableHarvests)
				continue
			}
			if err := i.ledger.Record(ctx, PhaseHistory, TableHarvests, row.ID); err != nil {
				return err
			}
		}
		summary.imported(TableHarvests)
	}
	return nil
}

func (i *Importer) importPrices(ctx context.Context, tenantID uuid.UUID, summary *Summary) error {
	rows, err := i.src.Prices()
	if err != nil {
		return err
	}

	customers, err := i.repos.Customers.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}

	for n, row := range rows {
		i.progress(TablePrices, n, len(rows))

		if strings.TrimSpace(row.ID) == "" {
			summary.skipped(TablePrices)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhaseHistory, TablePrices, row.ID)
		if err != nil {
			return err
		}
		if seen {
			summary.skipped(TablePrices)
			continue
		}

		record := archive.CropPrice{
			ID:           uuid.New(),
			TenantID:     tenantID,
			LegacyID:     row.ID,
			CustomerName: strings.TrimSpace(row.ClientName),
			Crop:         strings.TrimSpace(row.Item),
			Price:        decimal.NewFromFloat(row.Price).Round(2),
			EffectiveAt:  parseDate(row.PricedAt),
		}
		if c, ok := matchCustomer(customers, record.CustomerName); ok {
			record.CustomerID = c.ID()
		}

		if !i.dryRun {
			if _, err := i.repos.Prices.Create(ctx, record); err != nil {
				if errors.Is(err, archive.ErrDuplicate) {
					if err := i.ledger.Record(ctx, PhaseHistory, TablePrices, row.ID); err != nil {
						return err
					}
					summary.skipped(TablePrices)
					continue
				}
				i.log.WithError(err).WithField("legacyId", row.ID).Error("price insert failed")
				summary.failed(TablePrices)
				continue
			}
			if err := i.ledger.Record(ctx, PhaseHistory, TablePrices, row.ID); err != nil {
				return err
			}
		}
		summary.imported(TablePrices)
	}
	return nil
}

// matchCustomer resolves a free-text client name: exact match first, then a
// case-insensitive substring match on the first 20 characters. The source
// price table has no customer foreign key at all, so name matching is the
// only join path; a miss leaves the reference Nil with the name preserved.
func matchCustomer(customers []customer.Customer, name string) (customer.Customer, bool) {
	if name == "" {
		return customer.Customer{}, false
	}
	for _, c := range customers {
		if c.Name() == name {
			return c, true
		}
	}

	needle := strings.ToLower(name)
	if len(needle) > 20 {
		needle = needle[:20]
	}
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name()), needle) {
			return c, true
		}
	}
	return customer.Customer{}, false
}
