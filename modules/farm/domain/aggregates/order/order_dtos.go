package order

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldstone-hq/fieldstone/pkg/constants"
	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type LineItemDTO struct {
	Crop      string  `json:"crop" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice string  `json:"unit_price" validate:"required"`
}

type CreateDTO struct {
	CustomerID string        `json:"customer_id" validate:"required,uuid4"`
	Items      []LineItemDTO `json:"items" validate:"required,min=1,dive"`
}

func (d *CreateDTO) Normalize() {
	d.CustomerID = strings.TrimSpace(d.CustomerID)
	for i := range d.Items {
		d.Items[i].Crop = strings.TrimSpace(d.Items[i].Crop)
		d.Items[i].UnitPrice = strings.TrimSpace(d.Items[i].UnitPrice)
	}
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

type TransitionDTO struct {
	Status string `json:"status" validate:"required,oneof=confirmed delivered cancelled"`
}

func (d *TransitionDTO) Normalize() {
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
}

func (d *TransitionDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
