package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the `validate` tags of a request struct. gin's binding
// covers presence checks; this is the gate for the nested request payloads the
// workflow accepts directly.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}
