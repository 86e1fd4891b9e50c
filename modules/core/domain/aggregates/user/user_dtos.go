package user

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldstone-hq/fieldstone/pkg/constants"
	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type CreateDTO struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=admin manager worker"`
}

func (d *CreateDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Role = strings.TrimSpace(d.Role)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

type UpdateDTO struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=admin manager worker"`
}

func (d *UpdateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Role = strings.TrimSpace(d.Role)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
