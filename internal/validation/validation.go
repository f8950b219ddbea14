// Package validation checks todo input against the fixed enumerations and the
// due date format. Enumeration checks are custom go-playground/validator tags
// on a shared validator instance, so struct-tag validation elsewhere in the
// service (configuration) goes through the same registry.
package validation

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/todoagenda/internal/domain"
)

// Validator tags registered on the shared instance.
const (
	TagPriority = "todo_priority"
	TagStatus   = "todo_status"
	TagCategory = "todo_category"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the shared validator with the todo tags registered.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		mustRegister(TagPriority, oneOfUpper(domain.Priorities))
		mustRegister(TagStatus, oneOfUpper(domain.Statuses))
		mustRegister(TagCategory, oneOfUpper(domain.Categories))
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}

// oneOfUpper accepts the empty string or any allowed value, ignoring case.
func oneOfUpper[T ~string](allowed []T) validator.Func {
	set := map[string]struct{}{"": {}}
	for _, v := range allowed {
		set[string(v)] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[strings.ToUpper(fl.Field().String())]
		return ok
	}
}

// ValidPriority reports whether s is empty or a known priority.
func ValidPriority(s string) bool {
	return Get().Var(s, TagPriority) == nil
}

// ValidStatus reports whether s is empty or a known status.
func ValidStatus(s string) bool {
	return Get().Var(s, TagStatus) == nil
}

// ValidCategory reports whether s is empty or a known category.
func ValidCategory(s string) bool {
	return Get().Var(s, TagCategory) == nil
}
