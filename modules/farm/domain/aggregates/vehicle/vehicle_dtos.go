package vehicle

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldstone-hq/fieldstone/pkg/constants"
	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type CreateDTO struct {
	Code         string `json:"code" validate:"required,max=16"`
	Registration string `json:"registration" validate:"required"`
	Kind         string `json:"kind"`
}

func (d *CreateDTO) Normalize() {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	d.Registration = strings.TrimSpace(d.Registration)
	d.Kind = strings.TrimSpace(d.Kind)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

type UpdateDTO struct {
	Registration string `json:"registration" validate:"required"`
	Kind         string `json:"kind"`
}

func (d *UpdateDTO) Normalize() {
	d.Registration = strings.TrimSpace(d.Registration)
	d.Kind = strings.TrimSpace(d.Kind)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
