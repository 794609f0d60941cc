package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	hostPattern     = regexp.MustCompile(`^[A-Za-z0-9._-]+(:[0-9]{1,5})?$`)
	relativePattern = regexp.MustCompile(`(^|/)\.\.(/|$)`)
)

// ValidateHost accepts host names and addresses with an optional port.
func ValidateHost(host string) error {
	if !hostPattern.MatchString(host) {
		return fmt.Errorf("%w: %s", ErrInvalidHost, host)
	}

	return nil
}

// ValidateSyncRoot rejects ".." segments and paths that do not exist.
func ValidateSyncRoot(path string) error {
	if relativePattern.MatchString(path) {
		return fmt.Errorf("%w (\"/../\") in: %s", ErrRelativePath, path)
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotFound, path)
	}

	return nil
}

// RegisterValidations adds the "ftphost" and "safepath" tags to v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("ftphost", func(fl validator.FieldLevel) bool {
		return ValidateHost(fl.Field().String()) == nil
	}); err != nil {
		return fmt.Errorf("failed to register ftphost validation: %w", err)
	}

	if err := v.RegisterValidation("safepath", func(fl validator.FieldLevel) bool {
		return !relativePattern.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register safepath validation: %w", err)
	}

	return nil
}

// Validate checks cfg with v and then runs the checks that need the
// filesystem. v must have RegisterValidations applied.
func Validate(v *validator.Validate, cfg Config) error {
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}

		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}

	if err := ValidateSyncRoot(cfg.Deploy.SyncRoot); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: %s", field, ErrMissing)
	case "ftphost":
		return fmt.Sprintf("%s: %s: %v", field, ErrInvalidHost, fe.Value())
	case "safepath":
		return fmt.Sprintf("%s: %s (\"/../\") in: %v", field, ErrRelativePath, fe.Value())
	default:
		return fmt.Sprintf("%s: failed %q check", field, fe.Tag())
	}
}
