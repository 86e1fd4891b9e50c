package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/plantdata"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/vehicle"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

// ImportReference loads the four independent reference tables: farms,
// clients, vehicles and plant templates. Rows get sequential display codes
// in source order; the legacy UUID is preserved on every document. Rows
// missing required fields are skipped and counted, never fatal.
//
// Idempotency does not rest on the ledger alone: each table's existing
// legacy UUIDs are loaded up front, so rows already in the store are
// skipped even when the ledger was lost, and their ledger entries are
// backfilled.
func (i *Importer) ImportReference(ctx context.Context) (*Summary, error) {
	summary := newSummary(PhaseReference)

	if err := i.importFarms(ctx, summary); err != nil {
		return summary, err
	}
	if err := i.importClients(ctx, summary); err != nil {
		return summary, err
	}
	if err := i.importVehicles(ctx, summary); err != nil {
		return summary, err
	}
	if err := i.importPlants(ctx, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func (i *Importer) importFarms(ctx context.Context, summary *Summary) error {
	rows, err := i.src.Farms()
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	seq, err := i.repos.Farms.Count(ctx)
	if err != nil {
		return fmt.Errorf("count farms: %w", err)
	}

	existing, err := i.repos.Farms.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load farms: %w", err)
	}
	byLegacy := make(map[string]struct{}, len(existing))
	for _, f := range existing {
		if f.LegacyID() != "" {
			byLegacy[f.LegacyID()] = struct{}{}
		}
	}

	for n, row := range rows {
		i.progress(TableFarms, n, len(rows))

		if strings.TrimSpace(row.ID) == "" || strings.TrimSpace(row.Name) == "" {
			i.log.WithField("table", TableFarms).WithField("row", n).Warn("row missing required fields, skipped")
			summary.skipped(TableFarms)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhaseReference, TableFarms, row.ID)
		if err != nil {
			return err
		}
		if seen {
			summary.skipped(TableFarms)
			continue
		}
		if _, ok := byLegacy[row.ID]; ok {
			// Already in the store from an earlier run whose ledger entry
			// was lost. Backfill the ledger instead of re-importing.
			if !i.dryRun {
				if err := i.ledger.Record(ctx, PhaseReference, TableFarms, row.ID); err != nil {
					return err
				}
			}
			summary.skipped(TableFarms)
			continue
		}

		seq++
		code := fmt.Sprintf("F%03d", seq)
		if !i.dryRun {
			entity := farm.New(tenantID, code, row.Name, row.Location).WithLegacyID(row.ID)
			if _, err := i.repos.Farms.Create(ctx, entity); err != nil {
				i.log.WithError(err).WithField("legacyId", row.ID).Error("farm insert failed")
				summary.failed(TableFarms)
				seq--
				continue
			}
			if err := i.ledger.Record(ctx, PhaseReference, TableFarms, row.ID); err != nil {
				return err
			}
		}
		byLegacy[row.ID] = struct{}{}
		summary.imported(TableFarms)
	}
	return nil
}

func (i *Importer) importClients(ctx context.Context, summary *Summary) error {
	rows, err := i.src.Clients()
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	seq, err := i.repos.Customers.Count(ctx)
	if err != nil {
		return fmt.Errorf("count customers: %w", err)
	}

	existing, err := i.repos.Customers.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	byLegacy := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		if c.LegacyID() != "" {
			byLegacy[c.LegacyID()] = struct{}{}
		}
	}

	for n, row := range rows {
		i.progress(TableClients, n, len(rows))

		if strings.TrimSpace(row.ID) == "" || strings.TrimSpace(row.Name) == "" {
			i.log.WithField("table", TableClients).WithField("row", n).Warn("row missing required fields, skipped")
			summary.skipped(TableClients)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhaseReference, TableClients, row.ID)
		if err != nil {
			return err
		}
		if seen {
			summary.skipped(TableClients)
			continue
		}
		if _, ok := byLegacy[row.ID]; ok {
			if !i.dryRun {
				if err := i.ledger.Record(ctx, PhaseReference, TableClients, row.ID); err != nil {
					return err
				}
			}
			summary.skipped(TableClients)
			continue
		}

		seq++
		code := fmt.Sprintf("C%03d", seq)
		if !i.dryRun {
			entity := customer.New(tenantID, code, row.Name).
				WithContact(row.Phone, row.Email).
				WithLegacyID(row.ID)
			if _, err := i.repos.Customers.Create(ctx, entity); err != nil {
				i.log.WithError(err).WithField("legacyId", row.ID).Error("customer insert failed")
				summary.failed(TableClients)
				seq--
				continue
			}
			if err := i.ledger.Record(ctx, PhaseReference, TableClients, row.ID); err != nil {
				return err
			}
		}
		byLegacy[row.ID] = struct{}{}
		summary.imported(TableClients)
	}
	return nil
}

func (i *Importer) importVehicles(ctx context.Context, summary *Summary) error {
	rows, err := i.src.Vehicles()
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	seq, err := i.repos.Vehicles.Count(ctx)
	if err != nil {
		return fmt.Errorf("count vehicles: %w", err)
	}

	existing, err := i.repos.Vehicles.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load vehicles: %w", err)
	}
	byLegacy := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		if v.LegacyID() != "" {
			byLegacy[v.LegacyID()] = struct{}{}
		}
	}

	for n, row := range rows {
		i.progress(TableVehicles, n, len(rows))

		if strings.TrimSpace(row.ID) == "" || strings.TrimSpace(row.Registration) == "" {
			i.log.WithField("table", TableVehicles).WithField("row", n).Warn("row missing required fields, skipped")
			summary.skipped(TableVehicles)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhaseReference, TableVehicles, row.ID)
		if err != nil {
			return err
		}
		if seen {
			summary.skipped(TableVehicles)
			continue
		}
		if _, ok := byLegacy[row.ID]; ok {
			if !i.dryRun {
				if err := i.ledger.Record(ctx, PhaseReference, TableVehicles, row.ID); err != nil {
					return err
				}
			}
			summary.skipped(TableVehicles)
			continue
		}

		seq++
		code := fmt.Sprintf("V%03d", seq)
		if !i.dryRun {
			entity := vehicle.New(tenantID, code, row.Registration, row.Type).WithLegacyID(row.ID)
			if _, err := i.repos.Vehicles.Create(ctx, entity); err != nil {
				i.log.WithError(err).WithField("legacyId", row.ID).Error("vehicle insert failed")
				summary.failed(TableVehicles)
				seq--
				continue
			}
			if err := i.ledger.Record(ctx, PhaseReference, TableVehicles, row.ID); err != nil {
				return err
			}
		}
		byLegacy[row.ID] = struct{}{}
		summary.imported(TableVehicles)
	}
	return nil
}

func (i *Importer) importPlants(ctx context.Context, summary *Summary) error {
	rows, err := i.src.Plants()
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	seq, err := i.repos.Plants.Count(ctx)
	if err != nil {
		return fmt.Errorf("count plant templates: %w", err)
	}

	existing, err := i.repos.Plants.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load plant templates: %w", err)
	}
	byLegacy := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		if p.LegacyID() != "" {
			byLegacy[p.LegacyID()] = struct{}{}
		}
	}

	for n, row := range rows {
		i.progress(TablePlants, n, len(rows))

		// Legacy plant rows with a null Item are unusable as templates.
		if strings.TrimSpace(row.ID) == "" || strings.TrimSpace(row.Item) == "" {
			i.log.WithField("table", TablePlants).WithField("row", n).Warn("row missing required fields, skipped")
			summary.skipped(TablePlants)
			continue
		}
		seen, err := i.ledger.Seen(ctx, PhaseReference, TablePlants, row.ID)
		if err != nil {
			return err
		}
		if seen {
			summary.skipped(TablePlants)
			continue
		}
		if _, ok := byLegacy[row.ID]; ok {
			if !i.dryRun {
				if err := i.ledger.Record(ctx, PhaseReference, TablePlants, row.ID); err != nil {
					return err
				}
			}
			summary.skipped(TablePlants)
			continue
		}

		seq++
		code := fmt.Sprintf("P%03d", seq)
		if !i.dryRun {
			entity := plantdata.New(tenantID, code, row.Item, row.Variety, row.Spacing, row.DripRate).
				WithLegacyID(row.ID)
			if _, err := i.repos.Plants.Create(ctx, entity); err != nil {
				i.log.WithError(err).WithField("legacyId", row.ID).Error("plant template insert failed")
				summary.failed(TablePlants)
				seq--
				continue
			}
			if err := i.ledger.Record(ctx, PhaseReference, TablePlants, row.ID); err != nil {
				return err
			}
		}
		byLegacy[row.ID] = struct{}{}
		summary.imported(TablePlants)
	}
	return nil
}
