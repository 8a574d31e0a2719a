package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors extracts a field -> message map from a gin binding error so the
// client receives a field-level validation payload instead of a single opaque
// string. Non-validator errors yield a single "request" entry.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["request"] = err.Error()
		return out
	}

	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			out[field] = "this field is required"
		case "oneof":
			out[field] = "must be one of: " + fe.Param()
		default:
			out[field] = "failed validation: " + fe.Tag()
		}
	}
	return out
}
