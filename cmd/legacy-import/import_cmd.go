package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fieldstone-hq/fieldstone/internal/migration"
	"github.com/fieldstone-hq/fieldstone/modules/farm/infrastructure/persistence"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
)

type importOptions struct {
	inputDir      string
	tenant        string
	dryRun        bool
	progressEvery int
}

func newPhaseCmd(opts *importOptions, phase, short string) *cobra.Command {
	return &cobra.Command{
		Use:   phase,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhase(cmd.Context(), *opts, phase)
		},
	}
}

func runPhase(ctx context.Context, opts importOptions, phase string) error {
	tenantID, err := uuid.Parse(strings.TrimSpace(opts.tenant))
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid --tenant: %w", err))
	}
	if info, err := os.Stat(opts.inputDir); err != nil || !info.IsDir() {
		return withCode(exitValidation, fmt.Errorf("--input is not a readable directory: %s", opts.inputDir))
	}

	conf := configuration.Use()
	logger := conf.Logger()

	connectCtx, cancel := context.WithTimeout(ctx, conf.Mongo.Timeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return withCode(exitDB, fmt.Errorf("connect to mongo: %w", err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return withCode(exitDB, fmt.Errorf("ping mongo: %w", err))
	}
	db := client.Database(conf.Mongo.Database)

	if err := persistence.EnsureIndexes(ctx, db); err != nil {
		return withCode(exitDB, fmt.Errorf("ensure indexes: %w", err))
	}
	if err := migration.EnsureLedgerIndexes(ctx, db); err != nil {
		return withCode(exitDB, fmt.Errorf("ensure ledger indexes: %w", err))
	}

	repos := migration.Repositories{
		Farms:     persistence.NewFarmRepository(db),
		Customers: persistence.NewCustomerRepository(db),
		Vehicles:  persistence.NewVehicleRepository(db),
		Plants:    persistence.NewPlantDataRepository(db),
		Blocks:    persistence.NewBlockRepository(client, db),
		Archives:  persistence.NewBlockArchiveRepository(db),
		Harvests:  persistence.NewHarvestRepository(db),
		Prices:    persistence.NewCropPriceRepository(db),
	}

	importerOpts := []migration.Option{migration.WithDryRun(opts.dryRun)}
	if opts.progressEvery > 0 {
		importerOpts = append(importerOpts, migration.WithProgressEvery(opts.progressEvery))
	}
	imp := migration.NewImporter(
		migration.NewSource(opts.inputDir),
		repos,
		migration.NewMongoLedger(db),
		logger.WithField("tenant", tenantID.String()),
		importerOpts...,
	)

	ctx = composables.WithTenantID(ctx, tenantID)

	var summaries []*migration.Summary
	var runErr error
	switch phase {
	case "reference":
		var s *migration.Summary
		s, runErr = imp.ImportReference(ctx)
		summaries = append(summaries, s)
	case "blocks":
		var s *migration.Summary
		s, runErr = imp.ImportBlocks(ctx)
		summaries = append(summaries, s)
	case "plantings":
		var s *migration.Summary
		s, runErr = imp.ImportPlantings(ctx)
		summaries = append(summaries, s)
	case "history":
		var s *migration.Summary
		s, runErr = imp.ImportHistory(ctx)
		summaries = append(summaries, s)
	case "run":
		summaries, runErr = imp.Run(ctx)
	default:
		return withCode(exitUsage, fmt.Errorf("unknown phase %q", phase))
	}

	enc := json.NewEncoder(os.Stdout)
	for _, s := range summaries {
		if s == nil {
			continue
		}
		if err := enc.Encode(s); err != nil {
			return err
		}
	}

	var phaseErr *migration.ErrPhaseErrors
	switch {
	case errors.As(runErr, &phaseErr):
		return withCode(exitPartial, runErr)
	case runErr != nil:
		return withCode(exitDB, runErr)
	}
	for _, s := range summaries {
		if s != nil && s.Errors > 0 {
			return withCode(exitPartial, fmt.Errorf("phase %s reported %d row errors", s.Phase, s.Errors))
		}
	}
	return nil
}
