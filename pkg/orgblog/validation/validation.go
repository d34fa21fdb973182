// Package validation registers the custom binding rules used by request
// structs across the API.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	once    sync.Once
	initErr error
)

// Register installs the custom rules on gin's validator engine. It is safe
// to call more than once.
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			initErr = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		initErr = RegisterOn(v)
	})
	return initErr
}

// MustRegister is Register for use in main and test setup.
func MustRegister() {
	if err := Register(); err != nil {
		panic(err)
	}
}

// RegisterOn installs the custom rules on v.
func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"slug":     validateSlug,
		"notblank": validateNotBlank,
		"role":     validateRole,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// validateSlug accepts lowercase alphanumerics separated by single hyphens.
func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}
