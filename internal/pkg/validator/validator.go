package validator

import (
	"errors"
	"sort"
	"strings"

	"hostelcore/internal/domain"
	"hostelcore/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("booking_type", func(fl validator.FieldLevel) bool {
		return domain.BookingType(fl.Field().String()).IsValid()
	})
	_ = validate.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		return domain.BookingStatus(fl.Field().String()).IsValid()
	})
	_ = validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return domain.PaymentMethod(fl.Field().String()).IsValid()
	})
	_ = validate.RegisterValidation("origin_type", func(fl validator.FieldLevel) bool {
		_, err := domain.NewOrigin(domain.OriginType(fl.Field().String()), 1)
		return err == nil
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string)
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Struct validates v and reports failures as an apperror validation error.
func Struct(v interface{}) error {
	fields := Validate(v)
	if len(fields) == 0 {
		return nil
	}
	parts := make([]string, 0, len(fields))
	for f, tag := range fields {
		parts = append(parts, f+" ("+tag+")")
	}
	sort.Strings(parts)
	return apperror.Validation("invalid fields: %s", strings.Join(parts, ", "))
}
