// Package validation checks inbound story and chapter payloads before they reach the
// datastore. Validators never stop at the first problem: every violated field rule is
// reported.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/coreybb/fabula/models"
)

const (
	tagStoryStatus = "story_status"
	tagNotBlank    = "notblank"
)

// Violation is a single failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the result of validating a payload. An empty Errors means the payload is valid.
type Errors []Violation

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields returns the offending field paths in report order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, v := range e {
		fields = append(fields, v.Field)
	}
	return fields
}

// Err returns nil when there are no violations so callers can use the usual
// `if err := ...; err != nil` flow at the handler boundary.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(jsonFieldName)
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tagStoryStatus, func(fl validator.FieldLevel) bool {
			_, ok := models.IsValidStoryStatus(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation(tagNotBlank, func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// check runs the struct rules and converts the library's errors into Violations.
func check(payload any) Errors {
	err := instance().Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "", Message: err.Error()}}
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		out = append(out, Violation{Field: field, Message: message(field, fe)})
	}
	return out
}

// fieldPath drops the root struct name from a namespace such as
// "StoryPayload.chapters[0].title".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", tagNotBlank:
		return field + " is required"
	case tagStoryStatus:
		return fmt.Sprintf("%s must be one of: %s, %s", field, models.StoryStatusDraft, models.StoryStatusPublished)
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed the '%s' rule", field, fe.Tag())
	}
}
