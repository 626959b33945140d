// Package customfields derives validation rules from team-scoped field
// definitions and validates raw custom_fields payloads against them. The
// package is pure: it never touches the database or the request, which is
// what makes the rule construction unit-testable in isolation.
package customfields

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chronotrack/time-tracking-api/internal/constants"
	"github.com/chronotrack/time-tracking-api/internal/models"
)

// Mode selects the rule set: create and update derive different presence
// and date-format rules from the same definitions.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// Payload is the raw custom_fields map as decoded from the request JSON.
type Payload map[string]any

// Rule is the derived validation rule for a single field.
type Rule struct {
	Code          string
	Type          models.FieldType
	Options       models.StringList
	MustBePresent bool // the key must exist in the payload
	ValueRequired bool // the value itself must be non-empty
	StrictDate    bool // date must match YYYY-MM-DD exactly
}

// ValidationErrors maps "custom_fields.<code>" to human-readable messages.
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, messages := range v {
		parts = append(parts, field+": "+strings.Join(messages, "; "))
	}
	return strings.Join(parts, ", ")
}

// Add appends a message for a field key.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationErrors) add(code, message string) {
	v.Add("custom_fields."+code, message)
}

// Merge copies all messages from other into v.
func (v ValidationErrors) Merge(other ValidationErrors) {
	for field, messages := range other {
		v[field] = append(v[field], messages...)
	}
}

// Rules derives the per-field rule set for the given definitions and
// payload. On create every resolved definition yields a rule. On update a
// rule is derived only for definitions whose code is present in the payload
// or which are required; a required field must be present but its value may
// be empty unless the type is boolean.
func Rules(definitions []models.CustomFieldDefinition, payload Payload, mode Mode) map[string]Rule {
	rules := make(map[string]Rule, len(definitions))

	for _, def := range definitions {
		rule := Rule{
			Code:    def.Code,
			Type:    def.Type,
			Options: def.Options,
		}

		switch mode {
		case ModeCreate:
			rule.MustBePresent = def.IsRequired
			rule.ValueRequired = def.IsRequired
		case ModeUpdate:
			_, present := payload[def.Code]
			if !present && !def.IsRequired {
				continue
			}
			if def.IsRequired {
				rule.MustBePresent = true
				rule.ValueRequired = def.Type == models.FieldTypeBoolean
			}
			rule.StrictDate = true
		}

		rules[def.Code] = rule
	}

	return rules
}

// Validate checks the payload against the rules derived from the
// definitions. Payload keys without a matching definition are ignored; they
// are never validated or stored. A nil or empty return means the payload is
// valid.
func Validate(definitions []models.CustomFieldDefinition, payload Payload, mode Mode) ValidationErrors {
	errs := ValidationErrors{}

	for _, rule := range Rules(definitions, payload, mode) {
		raw, present := payload[rule.Code]

		if rule.MustBePresent && !present {
			errs.add(rule.Code, fmt.Sprintf("The %s field is required.", rule.Code))
			continue
		}
		if rule.ValueRequired && (!present || isEmpty(raw)) {
			errs.add(rule.Code, fmt.Sprintf("The %s field is required.", rule.Code))
			continue
		}
		if !present || isEmpty(raw) {
			continue
		}

		if message := checkType(rule, raw); message != "" {
			errs.add(rule.Code, message)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkType(rule Rule, raw any) string {
	switch rule.Type {
	case models.FieldTypeText:
		s, ok := raw.(string)
		if !ok {
			return fmt.Sprintf("The %s field must be a string.", rule.Code)
		}
		if len(s) > constants.MaxDescriptionLength {
			return fmt.Sprintf("The %s field may not be greater than %d characters.", rule.Code, constants.MaxDescriptionLength)
		}
	case models.FieldTypeNumber:
		if !isNumeric(raw) {
			return fmt.Sprintf("The %s field must be a number.", rule.Code)
		}
	case models.FieldTypeDate:
		s, ok := raw.(string)
		if !ok || !isDate(s, rule.StrictDate) {
			if rule.StrictDate {
				return fmt.Sprintf("The %s field does not match the format YYYY-MM-DD.", rule.Code)
			}
			return fmt.Sprintf("The %s field must be a valid date.", rule.Code)
		}
	case models.FieldTypeBoolean:
		if !isBoolean(raw) {
			return fmt.Sprintf("The %s field must be true or false.", rule.Code)
		}
	case models.FieldTypeSelect:
		s, ok := raw.(string)
		if !ok {
			return fmt.Sprintf("The %s field must be a string.", rule.Code)
		}
		if len(rule.Options) > 0 && !contains(rule.Options, s) {
			return fmt.Sprintf("The selected %s is invalid.", rule.Code)
		}
	}
	return ""
}

func isEmpty(raw any) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && s == ""
}

func isNumeric(raw any) bool {
	switch v := raw.(type) {
	case float64, float32, int, int64, uint64:
		return true
	case string:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	default:
		return false
	}
}

// dateLayouts are the formats accepted on the create path. The update path
// only accepts the plain calendar date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func isDate(s string, strict bool) bool {
	if strict {
		_, err := time.Parse("2006-01-02", s)
		return err == nil
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBoolean(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return true
	case float64:
		return v == 0 || v == 1
	case string:
		switch strings.ToLower(v) {
		case "0", "1", "true", "false":
			return true
		}
	}
	return false
}

func contains(options models.StringList, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
