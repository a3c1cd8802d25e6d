package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissing reports required settings that are not set.
	ErrMissing = errors.New("config: missing required settings")
	// ErrInvalid reports settings with unusable values.
	ErrInvalid = errors.New("config: invalid settings")
)

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by the variable or flag a user actually sets.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"env", "flag"} {
			if name := f.Tag.Get(tag); name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("asin", func(fl validator.FieldLevel) bool {
		return asinPattern.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates s with the package rules and turns failures into an
// error wrapping ErrMissing or ErrInvalid.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			missing = append(missing, fe.Field())
		case "oneof":
			invalid = append(invalid, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "asin":
			invalid = append(invalid, fmt.Sprintf("%s must be 10 upper-case letters or digits", fe.Field()))
		case "min", "gte":
			invalid = append(invalid, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			invalid = append(invalid, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "gt":
			invalid = append(invalid, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		default:
			invalid = append(invalid, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(invalid, "; "))
}

// check validates the top-level settings. Sub-structs are validated on
// demand by the Require methods.
func check(cfg Config) error {
	top := struct {
		KindleDBPath     string `env:"KINDLE_DB_PATH" validate:"required"`
		CSVPath          string `env:"CSV_PATH" validate:"required"`
		RetryMaxAttempts int    `env:"RETRY_MAX_ATTEMPTS" validate:"min=1,max=20"`
		LogLevel         string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	}{cfg.KindleDBPath, cfg.CSVPath, cfg.RetryMaxAttempts, cfg.LogLevel}
	return Struct(top)
}

// RequireNotion checks the catalog connection settings.
func (c Config) RequireNotion() error {
	return Struct(c.Notion)
}

// RequireEnrichment checks the classifier settings.
func (c Config) RequireEnrichment() error {
	return Struct(c.Enrichment)
}

// RequireLedger checks the ledger DSN when one is set.
func (c Config) RequireLedger() error {
	return Struct(c.Ledger)
}

// RequireServer checks the HTTP trigger settings.
func (c Config) RequireServer() error {
	return Struct(c.Server)
}

// ValidASIN reports whether s looks like an Amazon identifier.
func ValidASIN(s string) bool {
	return asinPattern.MatchString(s)
}
