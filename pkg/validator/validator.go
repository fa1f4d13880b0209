package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ParseError flattens a binding error into a field -> message map.
func ParseError(err error) map[string]string {
	fields := make(map[string]string)
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			fields[fe.Field()] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		}
	} else if err != nil {
		fields["error"] = err.Error()
	}
	return fields
}
