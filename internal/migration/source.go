package migration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Table file names expected inside the input directory, one flat JSON array
// per legacy table. The schema is documented in docs/OLD_DATA_STRUCTURE.md.
const (
	TableFarms     = "farm_details"
	TableClients   = "clients"
	TableVehicles  = "vehicles"
	TablePlants    = "plant_data"
	TableBlocks    = "block_standards"
	TablePlantings = "farm_blocks"
	TableHistory   = "block_history"
	TableHarvests  = "harvests"
	TablePrices    = "prices"
)

type FarmRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type ClientRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type VehicleRow struct {
	ID           string `json:"id"`
	Registration string `json:"registration"`
	Type         string `json:"type"`
}

type PlantRow struct {
	ID       string  `json:"id"`
	Item     string  `json:"item"`
	Variety  string  `json:"variety"`
	Spacing  float64 `json:"spacing"`
	DripRate float64 `json:"drip_rate"`
}

type BlockRow struct {
	ID             string  `json:"id"`
	FarmDetailsRef string  `json:"farm_details_ref"`
	BlockCode      string  `json:"block_code"`
	TotalArea      float64 `json:"total_area"`
	TotalDrips     int     `json:"total_drips"`
}

type PlantingRow struct {
	ID        string `json:"id"`
	BlockCode string `json:"block_code"`
	Item      string `json:"item"`
	Season    string `json:"season"`
	Drips     int    `json:"drips"`
	PlantedAt string `json:"planted_at"`
}

type HistoryRow struct {
	ID               string `json:"id"`
	FarmBlockRef     string `json:"farm_block_ref"`
	BlockStandardRef string `json:"block_standard_ref"`
	BlockCode        string `json:"block_code"`
	Activity         string `json:"activity"`
	Payload          string `json:"payload"`
	RecordedAt       string `json:"recorded_at"`
}

type HarvestRow struct {
	ID           string  `json:"id"`
	FarmBlockRef string  `json:"farm_block_ref"`
	MainBlockRef string  `json:"main_block_ref"`
	BlockCode    string  `json:"block_code"`
	Item         string  `json:"item"`
	Quantity     float64 `json:"quantity"`
	Grade        string  `json:"grade"`
	HarvestedAt  string  `json:"harvested_at"`
}

type PriceRow struct {
	ID         string  `json:"id"`
	ClientName string  `json:"client_name"`
	Item       string  `json:"item"`
	Price      float64 `json:"price"`
	PricedAt   string  `json:"priced_at"`
}

// Source reads legacy table exports from a directory, one <table>.json file
// per table. Missing files read as empty tables so partial exports still run.
type Source struct {
	Dir string
}

func NewSource(dir string) *Source {
	return &Source{Dir: dir}
}

func (s *Source) Farms() ([]FarmRow, error) {
	var rows []FarmRow
	return rows, s.read(TableFarms, &rows)
}

func (s *Source) Clients() ([]ClientRow, error) {
	var rows []ClientRow
	return rows, s.read(TableClients, &rows)
}

func (s *Source) Vehicles() ([]VehicleRow, error) {
	var rows []VehicleRow
	return rows, s.read(TableVehicles, &rows)
}

func (s *Source) Plants() ([]PlantRow, error) {
	var rows []PlantRow
	return rows, s.read(TablePlants, &rows)
}

func (s *Source) Blocks() ([]BlockRow, error) {
	var rows []BlockRow
	return rows, s.read(TableBlocks, &rows)
}

func (s *Source) Plantings() ([]PlantingRow, error) {
	var rows []PlantingRow
	return rows, s.read(TablePlantings, &rows)
}

func (s *Source) History() ([]HistoryRow, error) {
	var rows []HistoryRow
	return rows, s.read(TableHistory, &rows)
}

func (s *Source) Harvests() ([]HarvestRow, error) {
	var rows []HarvestRow
	return rows, s.read(TableHarvests, &rows)
}

func (s *Source) Prices() ([]PriceRow, error) {
	var rows []PriceRow
	return rows, s.read(TablePrices, &rows)
}

func (s *Source) read(table string, out any) error {
	path := filepath.Join(s.Dir, table+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// parseDate accepts the date layouts seen in the legacy exports. A blank or
// unparseable value yields the zero time; callers treat that as "unknown".
func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
