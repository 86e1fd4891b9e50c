package farm

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldstone-hq/fieldstone/pkg/constants"
	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type CreateDTO struct {
	Code     string `json:"code" validate:"required,max=16"`
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
}

func (d *CreateDTO) Normalize() {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	d.Name = strings.TrimSpace(d.Name)
	d.Location = strings.TrimSpace(d.Location)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

type UpdateDTO struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
}

func (d *UpdateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Location = strings.TrimSpace(d.Location)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
