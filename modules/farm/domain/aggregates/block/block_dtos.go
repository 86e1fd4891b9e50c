package block

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldstone-hq/fieldstone/pkg/constants"
	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type CreatePhysicalDTO struct {
	FarmID     string  `json:"farm_id" validate:"required,uuid4"`
	TotalArea  float64 `json:"total_area" validate:"required,gt=0"`
	TotalDrips int     `json:"total_drips" validate:"gte=0"`
	LegacyCode string  `json:"legacy_code"`
}

func (d *CreatePhysicalDTO) Normalize() {
	d.FarmID = strings.TrimSpace(d.FarmID)
	d.LegacyCode = strings.TrimSpace(d.LegacyCode)
}

func (d *CreatePhysicalDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

// CreatePlantingDTO starts one planting cycle inside a physical block. The
// allocated area is derived from the drip count, not supplied by the caller.
type CreatePlantingDTO struct {
	Crop      string `json:"crop" validate:"required"`
	Season    string `json:"season"`
	Drips     int    `json:"drips" validate:"required,gt=0"`
	PlantedAt string `json:"planted_at"`
}

func (d *CreatePlantingDTO) Normalize() {
	d.Crop = strings.TrimSpace(d.Crop)
	d.Season = strings.TrimSpace(d.Season)
	d.PlantedAt = strings.TrimSpace(d.PlantedAt)
}

func (d *CreatePlantingDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
