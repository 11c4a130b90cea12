package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator
// and makes field errors report json names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("clock", validateClock); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("blood_type", validateBloodType); err != nil {
			panic(err)
		}
	})
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := availability.ParseClock(fl.Field().String())
	return err == nil
}

func validateBloodType(fl validator.FieldLevel) bool {
	return model.BloodType(strings.ToUpper(fl.Field().String())).Valid()
}

var tagMessages = map[string]string{
	"required":   "is required",
	"email":      "must be a valid email",
	"min":        "is too small",
	"max":        "is too large",
	"oneof":      "has an unsupported value",
	"clock":      "must be a time in HH:MM format",
	"blood_type": "must be a valid blood type",
}

// BindingError converts a ShouldBind failure into an application error.
// Validator failures become a validation error naming each field; anything
// else means the body could not be decoded.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.BadRequest("invalid request body", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := tagMessages[e.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %q check", e.Tag())
		}
		msgs = append(msgs, e.Field()+" "+msg)
	}
	return apperrors.Validation(strings.Join(msgs, "; "))
}
