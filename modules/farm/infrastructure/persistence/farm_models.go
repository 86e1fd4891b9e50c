package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/order"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/plantdata"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/vehicle"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/entities/archive"
)

const (
	CollectionFarms         = "farms"
	CollectionBlocks        = "blocks"
	CollectionCustomers     = "customers"
	CollectionVehicles      = "vehicles"
	CollectionPlantData     = "plant_data"
	CollectionOrders        = "orders"
	CollectionBlockArchives = "block_archives"
	CollectionBlockHarvests = "block_harvests"
	CollectionCropPrices    = "crop_prices"
)

type farmDoc struct {
	ID        string    `bson:"_id"`
	TenantID  string    `bson:"tenantId"`
	Code      string    `bson:"code"`
	Name      string    `bson:"name"`
	Location  string    `bson:"location,omitempty"`
	LegacyID  string    `bson:"legacyId,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type blockDoc struct {
	ID         string    `bson:"_id"`
	TenantID   string    `bson:"tenantId"`
	FarmID     string    `bson:"farmId"`
	Category   string    `bson:"category"`
	BlockCode  string    `bson:"blockCode"`
	LegacyCode string    `bson:"legacyBlockCode,omitempty"`
	State      string    `bson:"state"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`

	TotalArea      float64  `bson:"totalArea,omitempty"`
	AvailableArea  float64  `bson:"availableArea,omitempty"`
	TotalDrips     int      `bson:"totalDrips,omitempty"`
	ChildBlockIDs  []string `bson:"childBlockIds,omitempty"`
	VirtualCounter int      `bson:"virtualCounter,omitempty"`

	ParentBlockID string    `bson:"parentBlockId,omitempty"`
	AllocatedArea float64   `bson:"allocatedArea,omitempty"`
	Crop          string    `bson:"crop,omitempty"`
	Season        string    `bson:"season,omitempty"`
	PlantedAt     time.Time `bson:"plantedAt,omitempty"`
	ClearedAt     time.Time `bson:"clearedAt,omitempty"`
}

type customerDoc struct {
	ID        string    `bson:"_id"`
	TenantID  string    `bson:"tenantId"`
	Code      string    `bson:"code"`
	Name      string    `bson:"name"`
	Phone     string    `bson:"phone,omitempty"`
	Email     string    `bson:"email,omitempty"`
	LegacyID  string    `bson:"legacyId,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type vehicleDoc struct {
	ID           string    `bson:"_id"`
	TenantID     string    `bson:"tenantId"`
	Code         string    `bson:"code"`
	Registration string    `bson:"registration,omitempty"`
	Kind         string    `bson:"kind,omitempty"`
	LegacyID     string    `bson:"legacyId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type plantDataDoc struct {
	ID        string    `bson:"_id"`
	TenantID  string    `bson:"tenantId"`
	Code      string    `bson:"code"`
	Item      string    `bson:"item"`
	Variety   string    `bson:"variety,omitempty"`
	Spacing   float64   `bson:"spacing,omitempty"`
	DripRate  float64   `bson:"dripRate,omitempty"`
	LegacyID  string    `bson:"legacyId,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type lineItemDoc struct {
	Crop      string  `bson:"crop"`
	Quantity  float64 `bson:"quantity"`
	UnitPrice string  `bson:"unitPrice"`
}

type orderDoc struct {
	ID         string        `bson:"_id"`
	TenantID   string        `bson:"tenantId"`
	CustomerID string        `bson:"customerId"`
	Items      []lineItemDoc `bson:"items"`
	Status     string        `bson:"status"`
	Total      string        `bson:"total"`
	CreatedAt  time.Time     `bson:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt"`
}

type blockArchiveDoc struct {
	ID              string    `bson:"_id"`
	TenantID        string    `bson:"tenantId"`
	LegacyID        string    `bson:"legacyId,omitempty"`
	VirtualBlockID  string    `bson:"virtualBlockId,omitempty"`
	PhysicalBlockID string    `bson:"physicalBlockId,omitempty"`
	LegacyBlockCode string    `bson:"legacyBlockCode,omitempty"`
	Activity        string    `bson:"activity,omitempty"`
	Payload         string    `bson:"payload,omitempty"`
	RecordedAt      time.Time `bson:"recordedAt"`
	CreatedAt       time.Time `bson:"createdAt"`
}

type harvestDoc struct {
	ID              string    `bson:"_id"`
	TenantID        string    `bson:"tenantId"`
	LegacyID        string    `bson:"legacyId,omitempty"`
	VirtualBlockID  string    `bson:"virtualBlockId,omitempty"`
	PhysicalBlockID string    `bson:"physicalBlockId,omitempty"`
	LegacyBlockCode string    `bson:"legacyBlockCode,omitempty"`
	Crop            string    `bson:"crop,omitempty"`
	Quantity        string    `bson:"quantity"`
	Grade           string    `bson:"grade,omitempty"`
	HarvestedAt     time.Time `bson:"harvestedAt"`
	CreatedAt       time.Time `bson:"createdAt"`
}

type cropPriceDoc struct {
	ID           string    `bson:"_id"`
	TenantID     string    `bson:"tenantId"`
	LegacyID     string    `bson:"legacyId,omitempty"`
	CustomerID   string    `bson:"customerId,omitempty"`
	CustomerName string    `bson:"customerName,omitempty"`
	Crop         string    `bson:"crop"`
	Price        string    `bson:"price"`
	EffectiveAt  time.Time `bson:"effectiveAt"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func toFarmDoc(f farm.Farm, now time.Time) farmDoc {
	createdAt := f.CreatedAt()
	if createdAt.IsZero() {
		createdAt = now
	}
	return farmDoc{
		ID:        f.ID().String(),
		TenantID:  f.TenantID().String(),
		Code:      f.Code(),
		Name:      f.Name(),
		Location:  f.Location(),
		LegacyID:  f.LegacyID(),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
}

func toDomainFarm(doc farmDoc) farm.Farm {
	return farm.Hydrate(
		mustUUID(doc.ID),
		mustUUID(doc.TenantID),
		doc.Code,
		doc.Name,
		doc.Location,
		doc.LegacyID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

func toBlockDoc(b block.Block, now time.Time) blockDoc {
	createdAt := b.CreatedAt()
	if createdAt.IsZero() {
		createdAt = now
	}
	doc := blockDoc{
		ID:         b.ID().String(),
		TenantID:   b.TenantID().String(),
		FarmID:     b.FarmID().String(),
		Category:   string(b.Category()),
		BlockCode:  b.BlockCode(),
		LegacyCode: b.LegacyCode(),
		State:      string(b.State()),
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	}
	if b.IsPhysical() {
		doc.TotalArea = b.TotalArea()
		doc.AvailableArea = b.AvailableArea()
		doc.TotalDrips = b.TotalDrips()
		doc.VirtualCounter = b.VirtualCounter()
		for _, id := range b.ChildBlockIDs() {
			doc.ChildBlockIDs = append(doc.ChildBlockIDs, id.String())
		}
	} else {
		doc.ParentBlockID = b.ParentBlockID().String()
		doc.AllocatedArea = b.AllocatedArea()
		doc.Crop = b.Crop()
		doc.Season = b.Season()
		doc.PlantedAt = b.PlantedAt()
		doc.ClearedAt = b.ClearedAt()
	}
	return doc
}

func toDomainBlock(doc blockDoc) block.Block {
	var children []uuid.UUID
	for _, id := range doc.ChildBlockIDs {
		children = append(children, mustUUID(id))
	}
	parentID := uuid.Nil
	if doc.ParentBlockID != "" {
		parentID = mustUUID(doc.ParentBlockID)
	}
	return block.Hydrate(
		mustUUID(doc.ID),
		mustUUID(doc.TenantID),
		mustUUID(doc.FarmID),
		block.Category(doc.Category),
		doc.BlockCode,
		doc.LegacyCode,
		block.State(doc.State),
		doc.TotalArea,
		doc.AvailableArea,
		doc.TotalDrips,
		children,
		doc.VirtualCounter,
		parentID,
		doc.AllocatedArea,
		doc.Crop,
		doc.Season,
		doc.PlantedAt,
		doc.ClearedAt,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

func toCustomerDoc(c customer.Customer, now time.Time) customerDoc {
	createdAt := c.CreatedAt()
	if createdAt.IsZero() {
		createdAt = now
	}
	return customerDoc{
		ID:        c.ID().String(),
		TenantID:  c.TenantID().String(),
		Code:      c.Code(),
		Name:      c.Name(),
		Phone:     c.Phone(),
		Email:     c.Email(),
		LegacyID:  c.LegacyID(),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
}

func toDomainCustomer(doc customerDoc) customer.Customer {
	return customer.Hydrate(
		mustUUID(doc.ID),
		mustUUID(doc.TenantID),
		doc.Code,
		doc.Name,
		doc.Phone,
		doc.Email,
		doc.LegacyID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

func toVehicleDoc(v vehicle.Vehicle, now time.Time) vehicleDoc {
	createdAt := v.CreatedAt()
	if createdAt.IsZero() {
		createdAt = now
	}
	return vehicleDoc{
		ID:           v.ID().String(),
		TenantID:     v.TenantID().String(),
		Code:         v.Code(),
		Registration: v.Registration(),
		Kind:         v.Kind(),
		LegacyID:     v.LegacyID(),
		CreatedAt:    createdAt,
		UpdatedAt:    now,
	}
}

func toDomainVehicle(doc vehicleDoc) vehicle.Vehicle {
	return vehicle.Hydrate(
		mustUUID(doc.ID),
		mustUUID(doc.TenantID),
		doc.Code,
		doc.Registration,
		doc.Kind,
		doc.LegacyID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

func toPlantDataDoc(p plantdata.PlantData, now time.Time) plantDataDoc {
	createdAt := p.CreatedAt()
	if createdAt.IsZero() {
		createdAt = now
	}
	return plantDataDoc{
		ID:        p.ID().String(),
		TenantID:  p.TenantID().String(),
		Code:      p.Code(),
		Item:      p.Item(),
		Variety:   p.Variety(),
		Spacing:   p.Spacing(),
		DripRate:  p.DripRate(),
		LegacyID:  p.LegacyID(),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
}

func toDomainPlantData(doc plantDataDoc) plantdata.PlantData {
	return plantdata.Hydrate(
		mustUUID(doc.ID),
		mustUUID(doc.TenantID),
		doc.Code,
		doc.Item,
		doc.Variety,
		doc.Spacing,
		doc.DripRate,
		doc.LegacyID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

func toOrderDoc(o order.Order, now time.Time) orderDoc {
	createdAt := o.CreatedAt()
	if createdAt.IsZero() {
		createdAt = now
	}
	items := make([]lineItemDoc, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, lineItemDoc{
			Crop:      item.Crop,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}
	return orderDoc{
		ID:         o.ID().String(),
		TenantID:   o.TenantID().String(),
		CustomerID: o.CustomerID().String(),
		Items:      items,
		Status:     string(o.Status()),
		Total:      o.Total().String(),
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	}
}

func toDomainOrder(doc orderDoc) order.Order {
	items := make([]order.LineItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, order.LineItem{
			Crop:      item.Crop,
			Quantity:  item.Quantity,
			UnitPrice: mustDecimal(item.UnitPrice),
		})
	}
	return order.Hydrate(
		mustUUID(doc.ID),
		mustUUID(doc.TenantID),
		mustUUID(doc.CustomerID),
		items,
		order.Status(doc.Status),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

func toBlockArchiveDoc(a archive.BlockArchive, now time.Time) blockArchiveDoc {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	doc := blockArchiveDoc{
		ID:              a.ID.String(),
		TenantID:        a.TenantID.String(),
		LegacyID:        a.LegacyID,
		LegacyBlockCode: a.LegacyBlockCode,
		Activity:        a.Activity,
		Payload:         a.Payload,
		RecordedAt:      a.RecordedAt,
		CreatedAt:       createdAt,
	}
	if a.VirtualBlockID != uuid.Nil {
		doc.VirtualBlockID = a.VirtualBlockID.String()
	}
	if a.PhysicalBlockID != uuid.Nil {
		doc.PhysicalBlockID = a.PhysicalBlockID.String()
	}
	return doc
}

func toDomainBlockArchive(doc blockArchiveDoc) archive.BlockArchive {
	return archive.BlockArchive{
		ID:              mustUUID(doc.ID),
		TenantID:        mustUUID(doc.TenantID),
		LegacyID:        doc.LegacyID,
		VirtualBlockID:  mustUUID(doc.VirtualBlockID),
		PhysicalBlockID: mustUUID(doc.PhysicalBlockID),
		LegacyBlockCode: doc.LegacyBlockCode,
		Activity:        doc.Activity,
		Payload:         doc.Payload,
		RecordedAt:      doc.RecordedAt,
		CreatedAt:       doc.CreatedAt,
	}
}

func toHarvestDoc(h archive.Harvest, now time.Time) harvestDoc {
	createdAt := h.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	doc := harvestDoc{
		ID:              h.ID.String(),
		TenantID:        h.TenantID.String(),
		LegacyID:        h.LegacyID,
		LegacyBlockCode: h.LegacyBlockCode,
		Crop:            h.Crop,
		Quantity:        h.Quantity.String(),
		Grade:           h.Grade,
		HarvestedAt:     h.HarvestedAt,
		CreatedAt:       createdAt,
	}
	if h.VirtualBlockID != uuid.Nil {
		doc.VirtualBlockID = h.VirtualBlockID.String()
	}
	if h.PhysicalBlockID != uuid.Nil {
		doc.PhysicalBlockID = h.PhysicalBlockID.String()
	}
	return doc
}

func toDomainHarvest(doc harvestDoc) archive.Harvest {
	return archive.Harvest{
		ID:              mustUUID(doc.ID),
		TenantID:        mustUUID(doc.TenantID),
		LegacyID:        doc.LegacyID,
		VirtualBlockID:  mustUUID(doc.VirtualBlockID),
		PhysicalBlockID: mustUUID(doc.PhysicalBlockID),
		LegacyBlockCode: doc.LegacyBlockCode,
		Crop:            doc.Crop,
		Quantity:        mustDecimal(doc.Quantity),
		Grade:           doc.Grade,
		HarvestedAt:     doc.HarvestedAt,
		CreatedAt:       doc.CreatedAt,
	}
}

func toCropPriceDoc(p archive.CropPrice, now time.Time) cropPriceDoc {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	doc := cropPriceDoc{
		ID:           p.ID.String(),
		TenantID:     p.TenantID.String(),
		LegacyID:     p.LegacyID,
		CustomerName: p.CustomerName,
		Crop:         p.Crop,
		Price:        p.Price.String(),
		EffectiveAt:  p.EffectiveAt,
		CreatedAt:    createdAt,
	}
	if p.CustomerID != uuid.Nil {
		doc.CustomerID = p.CustomerID.String()
	}
	return doc
}

func toDomainCropPrice(doc cropPriceDoc) archive.CropPrice {
	return archive.CropPrice{
		ID:           mustUUID(doc.ID),
		TenantID:     mustUUID(doc.TenantID),
		LegacyID:     doc.LegacyID,
		CustomerID:   mustUUID(doc.CustomerID),
		CustomerName: doc.CustomerName,
		Crop:         doc.Crop,
		Price:        mustDecimal(doc.Price),
		EffectiveAt:  doc.EffectiveAt,
		CreatedAt:    doc.CreatedAt,
	}
}

// mustUUID tolerates malformed stored ids by mapping them to uuid.Nil;
// callers treat Nil as not-found.
func mustUUID(v string) uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// mustDecimal maps malformed stored amounts to zero rather than failing a
// whole read.
func mustDecimal(v string) decimal.Decimal {
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}
