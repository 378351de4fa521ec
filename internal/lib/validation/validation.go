// Package validation checks user supplied fields before anything is stored.
//
// It wraps go-playground/validator with two extra tags:
//
//	cpf       Brazilian civil ID, 11 digits with valid check digits,
//	          either bare or formatted as XXX.XXX.XXX-XX
//	br_phone  Brazilian mobile or landline number with area code
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
)

var (
	cpfFormat   = regexp.MustCompile(`^(\d{3}\.\d{3}\.\d{3}-\d{2}|\d{11})$`)
	phoneFormat = regexp.MustCompile(`^\(?\d{2}\)?[\s-]?\d{4,5}-?\d{4}$`)
)

// Error lists every field that failed, keyed by its JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return ValidCPF(fl.Field().String())
	})
	_ = v.RegisterValidation("br_phone", func(fl validator.FieldLevel) bool {
		return phoneFormat.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s against its `validate` tags. It returns nil or *Error.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) {
		return err
	}

	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

type voterRules struct {
	FullName string `json:"full_name" validate:"required,min=3,max=200"`
	CivilID  string `json:"civil_id" validate:"required,cpf"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"required,br_phone"`
}

// Voter validates the identity fields of a ballot.
func (v *Validator) Voter(voter entity.Voter) error {
	return v.Struct(voterRules{
		FullName: strings.TrimSpace(voter.FullName),
		CivilID:  strings.TrimSpace(voter.CivilID),
		Email:    strings.TrimSpace(voter.Email),
		Phone:    strings.TrimSpace(voter.Phone),
	})
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = fieldErrs
	}
	return ok
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "cpf":
		return "must be a valid CPF"
	case "br_phone":
		return "must be a valid phone number with area code"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
