package handlers

import (
	"encoding/json"
	"strings"

	"github.com/dustin/go-humanize"
)

// propertyAliases maps the names clients may ask for onto record fields.
var propertyAliases = map[string]string{
	"capital":   "capital_city",
	"admission": "admission_date",
	"admitted":  "admission_date",
}

// propertyLabels names the response key for a record field.
var propertyLabels = map[string]string{
	"capital_city":   "capital",
	"admission_date": "admitted",
}

var propertyFormatters = map[string]func(any) any{
	"population": formatPopulation,
}

func normalizeProperty(property string) string {
	property = strings.ToLower(property)
	if field, ok := propertyAliases[property]; ok {
		return field
	}
	return property
}

func propertyLabel(field string) string {
	if label, ok := propertyLabels[field]; ok {
		return label
	}
	return field
}

func formatProperty(field string, value any) any {
	if format, ok := propertyFormatters[field]; ok {
		return format(value)
	}
	return value
}

// formatPopulation renders a count with thousands separators, e.g. 39,538,223.
func formatPopulation(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return humanize.Comma(i)
		}
		if f, err := n.Float64(); err == nil {
			return humanize.Commaf(f)
		}
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	case float64:
		return humanize.Commaf(n)
	}
	return v
}

// hasValue mirrors a truthiness check: missing, null and "" count as unset.
func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	}
	return true
}
