package migration_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/internal/migration"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/plantdata"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/vehicle"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/entities/archive"
)

// In-memory stores backing the pipeline under test.

type memLedger struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newMemLedger() *memLedger {
	return &memLedger{seen: make(map[string]struct{})}
}

func (l *memLedger) key(phase, table, legacyID string) string {
	return phase + "/" + table + "/" + legacyID
}

func (l *memLedger) Seen(_ context.Context, phase, table, legacyID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[l.key(phase, table, legacyID)]
	return ok, nil
}

func (l *memLedger) Record(_ context.Context, phase, table, legacyID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[l.key(phase, table, legacyID)] = struct{}{}
	return nil
}

type memFarmRepo struct {
	order []uuid.UUID
	farms map[uuid.UUID]farm.Farm
}

func newMemFarmRepo() *memFarmRepo {
	return &memFarmRepo{farms: make(map[uuid.UUID]farm.Farm)}
}

func (r *memFarmRepo) GetPaginated(ctx context.Context, _ *farm.FindParams) ([]farm.Farm, int64, error) {
	out, _ := r.GetAll(ctx)
	return out, int64(len(out)), nil
}

func (r *memFarmRepo) GetByID(_ context.Context, id uuid.UUID) (farm.Farm, error) {
	f, ok := r.farms[id]
	if !ok {
		return farm.Farm{}, farm.ErrNotFound
	}
	return f, nil
}

func (r *memFarmRepo) GetByLegacyID(_ context.Context, legacyID string) (farm.Farm, error) {
	for _, f := range r.farms {
		if f.LegacyID() == legacyID {
			return f, nil
		}
	}
	return farm.Farm{}, farm.ErrNotFound
}

func (r *memFarmRepo) GetAll(_ context.Context) ([]farm.Farm, error) {
	out := make([]farm.Farm, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.farms[id])
	}
	return out, nil
}

func (r *memFarmRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.farms)), nil
}

func (r *memFarmRepo) Create(_ context.Context, f farm.Farm) (farm.Farm, error) {
	r.farms[f.ID()] = f
	r.order = append(r.order, f.ID())
	return f, nil
}

func (r *memFarmRepo) Update(_ context.Context, f farm.Farm) (farm.Farm, error) {
	if _, ok := r.farms[f.ID()]; !ok {
		return farm.Farm{}, farm.ErrNotFound
	}
	r.farms[f.ID()] = f
	return f, nil
}

func (r *memFarmRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.farms, id)
	return nil
}

type memCustomerRepo struct {
	order     []uuid.UUID
	customers map[uuid.UUID]customer.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[uuid.UUID]customer.Customer)}
}

func (r *memCustomerRepo) GetPaginated(ctx context.Context, _ *customer.FindParams) ([]customer.Customer, int64, error) {
	out, _ := r.GetAll(ctx)
	return out, int64(len(out)), nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (customer.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return customer.Customer{}, customer.ErrNotFound
	}
	return c, nil
}

func (r *memCustomerRepo) GetByLegacyID(_ context.Context, legacyID string) (customer.Customer, error) {
	for _, c := range r.customers {
		if c.LegacyID() == legacyID {
			return c, nil
		}
	}
	return customer.Customer{}, customer.ErrNotFound
}

func (r *memCustomerRepo) GetAll(_ context.Context) ([]customer.Customer, error) {
	out := make([]customer.Customer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.customers[id])
	}
	return out, nil
}

func (r *memCustomerRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.customers)), nil
}

func (r *memCustomerRepo) Create(_ context.Context, c customer.Customer) (customer.Customer, error) {
	r.customers[c.ID()] = c
	r.order = append(r.order, c.ID())
	return c, nil
}

func (r *memCustomerRepo) Update(_ context.Context, c customer.Customer) (customer.Customer, error) {
	r.customers[c.ID()] = c
	return c, nil
}

func (r *memCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

type memVehicleRepo struct {
	order    []uuid.UUID
	vehicles map[uuid.UUID]vehicle.Vehicle
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{vehicles: make(map[uuid.UUID]vehicle.Vehicle)}
}

func (r *memVehicleRepo) GetAll(_ context.Context) ([]vehicle.Vehicle, error) {
	out := make([]vehicle.Vehicle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.vehicles[id])
	}
	return out, nil
}

func (r *memVehicleRepo) GetByID(_ context.Context, id uuid.UUID) (vehicle.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return vehicle.Vehicle{}, vehicle.ErrNotFound
	}
	return v, nil
}

func (r *memVehicleRepo) GetByLegacyID(_ context.Context, legacyID string) (vehicle.Vehicle, error) {
	for _, v := range r.vehicles {
		if v.LegacyID() == legacyID {
			return v, nil
		}
	}
	return vehicle.Vehicle{}, vehicle.ErrNotFound
}

func (r *memVehicleRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.vehicles)), nil
}

func (r *memVehicleRepo) Create(_ context.Context, v vehicle.Vehicle) (vehicle.Vehicle, error) {
	r.vehicles[v.ID()] = v
	r.order = append(r.order, v.ID())
	return v, nil
}

func (r *memVehicleRepo) Update(_ context.Context, v vehicle.Vehicle) (vehicle.Vehicle, error) {
	r.vehicles[v.ID()] = v
	return v, nil
}

func (r *memVehicleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.vehicles, id)
	return nil
}

type memPlantRepo struct {
	order  []uuid.UUID
	plants map[uuid.UUID]plantdata.PlantData
}

func newMemPlantRepo() *memPlantRepo {
	return &memPlantRepo{plants: make(map[uuid.UUID]plantdata.PlantData)}
}

func (r *memPlantRepo) GetAll(_ context.Context) ([]plantdata.PlantData, error) {
	out := make([]plantdata.PlantData, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.plants[id])
	}
	return out, nil
}

func (r *memPlantRepo) GetByID(_ context.Context, id uuid.UUID) (plantdata.PlantData, error) {
	p, ok := r.plants[id]
	if !ok {
		return plantdata.PlantData{}, plantdata.ErrNotFound
	}
	return p, nil
}

func (r *memPlantRepo) GetByLegacyID(_ context.Context, legacyID string) (plantdata.PlantData, error) {
	for _, p := range r.plants {
		if p.LegacyID() == legacyID {
			return p, nil
		}
	}
	return plantdata.PlantData{}, plantdata.ErrNotFound
}

func (r *memPlantRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.plants)), nil
}

func (r *memPlantRepo) Create(_ context.Context, p plantdata.PlantData) (plantdata.PlantData, error) {
	r.plants[p.ID()] = p
	r.order = append(r.order, p.ID())
	return p, nil
}

func (r *memPlantRepo) Update(_ context.Context, p plantdata.PlantData) (plantdata.PlantData, error) {
	r.plants[p.ID()] = p
	return p, nil
}

func (r *memPlantRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.plants, id)
	return nil
}

type memBlockRepo struct {
	order  []uuid.UUID
	blocks map[uuid.UUID]block.Block
}

func newMemBlockRepo() *memBlockRepo {
	return &memBlockRepo{blocks: make(map[uuid.UUID]block.Block)}
}

func (r *memBlockRepo) GetPaginated(_ context.Context, params *block.FindParams) ([]block.Block, int64, error) {
	var out []block.Block
	for _, id := range r.order {
		b := r.blocks[id]
		if params != nil && params.Category != "" && b.Category() != params.Category {
			continue
		}
		if params != nil && params.FarmID != uuid.Nil && b.FarmID() != params.FarmID {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *memBlockRepo) GetByID(_ context.Context, id uuid.UUID) (block.Block, error) {
	b, ok := r.blocks[id]
	if !ok {
		return block.Block{}, block.ErrNotFound
	}
	return b, nil
}

func (r *memBlockRepo) GetByLegacyCode(_ context.Context, legacyCode string) (block.Block, error) {
	for _, b := range r.blocks {
		if b.LegacyCode() == legacyCode {
			return b, nil
		}
	}
	return block.Block{}, block.ErrNotFound
}

func (r *memBlockRepo) GetPhysical(ctx context.Context) ([]block.Block, error) {
	out, _, err := r.GetPaginated(ctx, &block.FindParams{Category: block.CategoryPhysical})
	return out, err
}

func (r *memBlockRepo) GetVirtual(ctx context.Context) ([]block.Block, error) {
	out, _, err := r.GetPaginated(ctx, &block.FindParams{Category: block.CategoryVirtual})
	return out, err
}

func (r *memBlockRepo) GetChildren(_ context.Context, parentID uuid.UUID) ([]block.Block, error) {
	var out []block.Block
	for _, id := range r.order {
		if r.blocks[id].ParentBlockID() == parentID {
			out = append(out, r.blocks[id])
		}
	}
	return out, nil
}

func (r *memBlockRepo) Create(_ context.Context, b block.Block) (block.Block, error) {
	for _, existing := range r.blocks {
		if existing.BlockCode() == b.BlockCode() {
			return block.Block{}, block.ErrCodeTaken
		}
	}
	r.blocks[b.ID()] = b
	r.order = append(r.order, b.ID())
	return b, nil
}

func (r *memBlockRepo) Update(_ context.Context, b block.Block) (block.Block, error) {
	if _, ok := r.blocks[b.ID()]; !ok {
		return block.Block{}, block.ErrNotFound
	}
	r.blocks[b.ID()] = b
	return b, nil
}

func (r *memBlockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.blocks, id)
	return nil
}

func (r *memBlockRepo) CreatePlanting(ctx context.Context, child block.Block, parent block.Block) (block.Block, error) {
	created, err := r.Create(ctx, child)
	if err != nil {
		return block.Block{}, err
	}
	if _, err := r.Update(ctx, parent); err != nil {
		return block.Block{}, err
	}
	return created, nil
}

func (r *memBlockRepo) ClearPlanting(ctx context.Context, child block.Block, parent block.Block) error {
	if _, err := r.Update(ctx, child); err != nil {
		return err
	}
	_, err := r.Update(ctx, parent)
	return err
}

type memArchiveRepo struct {
	records []archive.BlockArchive
}

func (r *memArchiveRepo) GetByBlockID(_ context.Context, blockID uuid.UUID) ([]archive.BlockArchive, error) {
	var out []archive.BlockArchive
	for _, a := range r.records {
		if a.VirtualBlockID == blockID || a.PhysicalBlockID == blockID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memArchiveRepo) Create(_ context.Context, a archive.BlockArchive) (archive.BlockArchive, error) {
	for _, existing := range r.records {
		if a.LegacyID != "" && existing.LegacyID == a.LegacyID {
			return archive.BlockArchive{}, archive.ErrDuplicate
		}
	}
	r.records = append(r.records, a)
	return a, nil
}

func (r *memArchiveRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.records)), nil
}

type memHarvestRepo struct {
	records []archive.Harvest
}

func (r *memHarvestRepo) GetByBlockID(_ context.Context, blockID uuid.UUID) ([]archive.Harvest, error) {
	var out []archive.Harvest
	for _, h := range r.records {
		if h.VirtualBlockID == blockID || h.PhysicalBlockID == blockID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memHarvestRepo) Create(_ context.Context, h archive.Harvest) (archive.Harvest, error) {
	for _, existing := range r.records {
		if h.LegacyID != "" && existing.LegacyID == h.LegacyID {
			return archive.Harvest{}, archive.ErrDuplicate
		}
	}
	r.records = append(r.records, h)
	return h, nil
}

func (r *memHarvestRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.records)), nil
}

type memPriceRepo struct {
	records []archive.CropPrice
}

func (r *memPriceRepo) GetByCrop(_ context.Context, crop string) ([]archive.CropPrice, error) {
	var out []archive.CropPrice
	for _, p := range r.records {
		if p.Crop == crop {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPriceRepo) Create(_ context.Context, p archive.CropPrice) (archive.CropPrice, error) {
	for _, existing := range r.records {
		if p.LegacyID != "" && existing.LegacyID == p.LegacyID {
			return archive.CropPrice{}, archive.ErrDuplicate
		}
	}
	r.records = append(r.records, p)
	return p, nil
}

func (r *memPriceRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.records)), nil
}

func newMemRepos() (migration.Repositories, *memBlockRepo, *memArchiveRepo, *memHarvestRepo, *memPriceRepo) {
	blocks := newMemBlockRepo()
	archives := &memArchiveRepo{}
	harvests := &memHarvestRepo{}
	prices := &memPriceRepo{}
	repos := migration.Repositories{
		Farms:     newMemFarmRepo(),
		Customers: newMemCustomerRepo(),
		Vehicles:  newMemVehicleRepo(),
		Plants:    newMemPlantRepo(),
		Blocks:    blocks,
		Archives:  archives,
		Harvests:  harvests,
		Prices:    prices,
	}
	return repos, blocks, archives, harvests, prices
}
