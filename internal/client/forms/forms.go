// Package forms validates user input before it reaches the auth state
// machine or the backend. Rules are declared as struct tags and checked with
// go-playground/validator; failures come back as ValidationErrors keyed by
// the JSON field name.
package forms

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

// ValidationErrors maps a field name to a user-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return strings.Join(parts, "; ")
}

// Validator checks form structs. The zero value is not usable; build one
// with New.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New returns a Validator whose "not in the past" date rule uses now.
// A nil now means time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	fv := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}

	fv.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = fv.v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})
	_ = fv.v.RegisterValidation("patientstatus", func(fl validator.FieldLevel) bool {
		for _, s := range models.PatientStatuses {
			if string(s) == fl.Field().String() {
				return true
			}
		}
		return false
	})
	_ = fv.v.RegisterValidation("notpast", fv.notPast)

	return fv
}

func (fv *Validator) notPast(fl validator.FieldLevel) bool {
	now := fv.now()
	day, err := time.ParseInLocation(models.DateLayout, fl.Field().String(), now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !day.Before(today)
}

// Struct validates s and returns ValidationErrors when any rule fails.
func (fv *Validator) Struct(s any) error {
	err := fv.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := ValidationErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "role":
		return "must be one of admin, doctor, nurse, patient"
	case "patientstatus":
		return "must be one of Stable, Needs Attention, Improving, Critical"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "notpast":
		return "must not be in the past"
	}
	return "is invalid"
}
