package migration

import (
	"github.com/sirupsen/logrus"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/plantdata"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/vehicle"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/entities/archive"
)

const defaultProgressEvery = 500

// Repositories bundles every store the pipeline writes to.
type Repositories struct {
	Farms     farm.Repository
	Customers customer.Repository
	Vehicles  vehicle.Repository
	Plants    plantdata.Repository
	Blocks    block.Repository
	Archives  archive.BlockArchiveRepository
	Harvests  archive.HarvestRepository
	Prices    archive.CropPriceRepository
}

// Importer runs the legacy migration phases. Each phase is a sequential
// single-pass scan over one or more source tables; the system is offline
// during migration so there is no concurrency.
type Importer struct {
	src           *Source
	repos         Repositories
	ledger        Ledger
	log           *logrus.Entry
	dryRun        bool
	progressEvery int
}

type Option func(*Importer)

func WithDryRun(dryRun bool) Option {
	return func(i *Importer) { i.dryRun = dryRun }
}

func WithProgressEvery(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.progressEvery = n
		}
	}
}

func NewImporter(src *Source, repos Repositories, ledger Ledger, log *logrus.Entry, opts ...Option) *Importer {
	imp := &Importer{
		src:           src,
		repos:         repos,
		ledger:        ledger,
		log:           log,
		progressEvery: defaultProgressEvery,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

func (i *Importer) progress(table string, row, total int) {
	if row > 0 && row%i.progressEvery == 0 {
		i.log.WithFields(logrus.Fields{"table": table, "row": row, "total": total}).Info("migration progress")
	}
}
