package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom tags and the JSON field
// name lookup are registered in init before the first call to Struct.
var v = validator.New()

func init() {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// safe_link rejects characters that would break out of an href attribute.
	_ = v.RegisterValidation("safe_link", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\"'<> \t\r\n")
	})
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error naming the JSON fields that failed, or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
