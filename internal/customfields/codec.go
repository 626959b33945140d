package customfields

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chronotrack/time-tracking-api/internal/models"
)

// Encode serializes a validated raw value into the canonical text form
// stored in the value column. Booleans become "1"/"0"; everything else is
// cast to its string representation.
func Encode(fieldType models.FieldType, raw any) string {
	if fieldType == models.FieldTypeBoolean {
		if Truthy(raw) {
			return "1"
		}
		return "0"
	}

	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(v)
	}
}

// Decode parses a stored text value back into its typed form.
func Decode(fieldType models.FieldType, stored string) (any, error) {
	switch fieldType {
	case models.FieldTypeNumber:
		n, err := strconv.ParseFloat(stored, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value %q: %w", stored, err)
		}
		return n, nil
	case models.FieldTypeDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, stored); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid date value %q", stored)
	case models.FieldTypeBoolean:
		return stored == "1", nil
	default:
		return stored, nil
	}
}

// Truthy mirrors loose boolean coercion on input values: true, 1, "1",
// "true", "on" and "yes" are truthy, everything else is falsy.
func Truthy(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v == 1
	case string:
		switch strings.ToLower(v) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}
