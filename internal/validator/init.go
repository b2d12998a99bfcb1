package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())

	// "bcrypt" limits a string by bytes, not characters.
	if err := validate.RegisterValidation("bcrypt", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	}); err != nil {
		panic(err)
	}
}

// Messages validates s and returns one message per failing field, in field order.
// Each failure is looked up in messages under "Field.tag"; unknown keys fall back to
// the validator's own error text.
func Messages(s any, messages map[string]string) ([]string, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
			out = append(out, msg)
			continue
		}
		out = append(out, fe.Error())
	}
	return out, nil
}
