package order

import (
	"fmt"
	"strings"
)

// Customization rendering for receipts and the dashboard. Purely cosmetic:
// never affects pricing.

type customizationFormatter func(value any) string

// displayOrder fixes the order keys are rendered in, independent of map
// iteration order.
var displayOrder = []string{"size", "milk", "shots", "syrup", "temperature", "ice_level", "decaf", "extra_hot"}

var customizationFormatters = map[string]customizationFormatter{
	"size": func(v any) string {
		sizes := map[string]string{"small": "S", "medium": "M", "large": "L"}
		s := fmt.Sprintf("%v", v)
		if short, ok := sizes[s]; ok {
			return short
		}
		return s
	},
	"milk":      capitalize,
	"shots":     formatShots,
	"syrup":     capitalize,
	"ice_level": capitalize,
	"temperature": func(v any) string {
		n, ok := asInt(v)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%d°C", n)
	},
	"decaf":     flag("Decaf"),
	"extra_hot": flag("Extra Hot"),
}

// Display renders the customizations as a short human-readable summary,
// e.g. "L, Oat, 2 shots, Extra Hot". An empty mapping renders as "Standard";
// a mapping where nothing is renderable as "Custom".
func (c Customizations) Display() string {
	if len(c) == 0 {
		return "Standard"
	}

	parts := make([]string, 0, len(c))
	for _, key := range displayOrder {
		value, ok := c[key]
		if !ok || skipValue(value) {
			continue
		}
		if rendered := customizationFormatters[key](value); rendered != "" {
			parts = append(parts, rendered)
		}
	}

	if len(parts) == 0 {
		return "Custom"
	}
	return strings.Join(parts, ", ")
}

// skipValue filters values that mean "not requested": false, empty string,
// nil and numeric zero ("shots": 0 is no extra shots, not a zero-shot line).
func skipValue(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case bool:
		return !value
	case string:
		return value == ""
	case int:
		return value == 0
	case int64:
		return value == 0
	case float64:
		return value == 0
	}
	return false
}

func capitalize(v any) string {
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func formatShots(v any) string {
	n, ok := asInt(v)
	if !ok {
		return ""
	}
	if n == 1 {
		return "1 shot"
	}
	return fmt.Sprintf("%d shots", n)
}

func flag(label string) customizationFormatter {
	return func(v any) string {
		if b, ok := v.(bool); ok && b {
			return label
		}
		return ""
	}
}

// asInt normalizes the numeric types a JSON payload can carry.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
