package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DeliveryForm is the delivery information submitted at checkout.
type DeliveryForm struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=200"`
	State   string `json:"state" validate:"required,max=200"`
	Mobile  string `json:"mobile" validate:"required,min=8,max=20,numeric"`
}

func (f DeliveryForm) trimmed() DeliveryForm {
	return DeliveryForm{
		Name:    strings.TrimSpace(f.Name),
		Address: strings.TrimSpace(f.Address),
		City:    strings.TrimSpace(f.City),
		State:   strings.TrimSpace(f.State),
		Mobile:  strings.TrimSpace(f.Mobile),
	}
}

type DeliveryValidator struct {
	v *validator.Validate
}

func NewDeliveryValidator() *DeliveryValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &DeliveryValidator{v: v}
}

// Validate returns the cleaned form or a *ValidationError keyed by JSON field name.
func (d *DeliveryValidator) Validate(form DeliveryForm) (DeliveryForm, error) {
	form = form.trimmed()
	err := d.v.Struct(form)
	if err == nil {
		return form, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return form, err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return form, &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "numeric":
		return "must contain digits only"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}
