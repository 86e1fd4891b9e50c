package plantdata

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldstone-hq/fieldstone/pkg/constants"
	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type CreateDTO struct {
	Code     string  `json:"code" validate:"required,max=16"`
	Item     string  `json:"item" validate:"required"`
	Variety  string  `json:"variety"`
	Spacing  float64 `json:"spacing" validate:"gte=0"`
	DripRate float64 `json:"drip_rate" validate:"gte=0"`
}

func (d *CreateDTO) Normalize() {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	d.Item = strings.TrimSpace(d.Item)
	d.Variety = strings.TrimSpace(d.Variety)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

type UpdateDTO struct {
	Item     string  `json:"item" validate:"required"`
	Variety  string  `json:"variety"`
	Spacing  float64 `json:"spacing" validate:"gte=0"`
	DripRate float64 `json:"drip_rate" validate:"gte=0"`
}

func (d *UpdateDTO) Normalize() {
	d.Item = strings.TrimSpace(d.Item)
	d.Variety = strings.TrimSpace(d.Variety)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
