package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mdavis72884/bramble-claude-sub001/internal/scheduler"
)

// custom binding tags
const (
	clockTag = "hhmm"
	dateTag  = "ymd"
)

// RegisterValidators installs the custom tags on gin's validator and makes
// field errors report JSON names. Call once before serving requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("dto: gin validator engine is not go-playground/validator")
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation(clockTag, clockValidation); err != nil {
		return err
	}
	return v.RegisterValidation(dateTag, dateValidation)
}

func clockValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && scheduler.IsClock(s)
}

func dateValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && scheduler.IsDate(s)
}

// FieldErrors flattens binding failures into per-field messages.
// Returns nil when err is not a validation failure (e.g. malformed JSON).
func FieldErrors(err error) []scheduler.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]scheduler.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, scheduler.FieldError{
			Field:   trimRoot(fe.Namespace()),
			Message: messageFor(fe),
		})
	}
	return out
}

// trimRoot drops the struct name validator puts in front of the namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case clockTag:
		return "must be HH:MM"
	case dateTag:
		return "must be YYYY-MM-DD"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "uuid", "uuid4":
		return "must be a UUID"
	default:
		return "is invalid"
	}
}
