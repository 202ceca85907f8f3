// Package share moves calculator fields in and out of URL query strings.
package share

import (
	"net/url"
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
)

// ParseQuery extracts the variant's fields from a query. It reports false, and
// returns nothing, unless numberOfUnits is present. Unknown parameters are ignored.
func ParseQuery(values url.Values, variant form.Variant) (form.Fields, bool) {
	if _, ok := values[form.FieldNumberOfUnits]; !ok {
		return nil, false
	}

	fields := make(form.Fields)
	for _, key := range variant.Keys() {
		if v, ok := values[key]; ok && len(v) > 0 {
			fields[key] = v[0]
		}
	}
	return fields, true
}

// BuildLink returns pageURL without its query, followed by the fields in
// display order. Empty fields are left out.
func BuildLink(pageURL string, fields form.Fields, variant form.Variant) string {
	base := pageURL
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}

	parts := make([]string, 0, len(fields))
	for _, key := range variant.Keys() {
		v, ok := fields[key]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(v))
	}
	if len(parts) == 0 {
		return base
	}
	return base + "?" + strings.Join(parts, "&")
}
