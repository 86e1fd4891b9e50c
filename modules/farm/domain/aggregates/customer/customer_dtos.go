package customer

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldstone-hq/fieldstone/pkg/constants"
	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type CreateDTO struct {
	Code  string `json:"code" validate:"required,max=16"`
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (d *CreateDTO) Normalize() {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	d.Name = strings.TrimSpace(d.Name)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

type UpdateDTO struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (d *UpdateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
