package opt

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct checks the `validate` tags of cfg. Every failure is marked
// with ErrInvalidConfig and lists the offending fields.
func ValidateStruct(cfg any) error {
	err := structValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Mark(errors.Wrap(err, "validate config"), ErrInvalidConfig)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.Mark(errors.Newf("%s", strings.Join(msgs, "; ")), ErrInvalidConfig)
}

// Invalidf builds a configuration error for rules tags cannot express.
func Invalidf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidConfig)
}

func describe(fe validator.FieldError) string {
	var rule string
	switch fe.Tag() {
	case "gt":
		rule = "must be > " + fe.Param()
	case "gte", "min":
		rule = "must be >= " + fe.Param()
	case "lt":
		rule = "must be < " + fe.Param()
	case "lte", "max":
		rule = "must be <= " + fe.Param()
	case "oneof":
		rule = "must be one of [" + fe.Param() + "]"
	default:
		return fe.Error()
	}
	return fmt.Sprintf("%s %s (got %v)", fe.Field(), rule, fe.Value())
}
