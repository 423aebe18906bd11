// Package forms turns form plugin payloads into the flat values the engine
// stores and matches on.
package forms

import (
	"strings"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/tidwall/gjson"
	"github.com/ttacon/libphonenumber"
)

// Extractor normalizes submitted values. DefaultRegion is the ISO 3166 region
// used to read phone numbers written without a country code.
type Extractor struct {
	DefaultRegion string
}

func NewExtractor(defaultRegion string) *Extractor {
	return &Extractor{DefaultRegion: strings.ToUpper(strings.TrimSpace(defaultRegion))}
}

// Values extracts the name -> value pairs of a raw submission object. Keys are
// the submission keys; the form's parts tell which values need normalizing.
// Anything that is not a JSON object yields an empty map.
func (e *Extractor) Values(submission []byte, form models.Form) map[string]string {
	values := make(map[string]string)

	parsed := gjson.ParseBytes(submission)
	if !parsed.IsObject() {
		return values
	}

	partTypes := form.PartTypes()

	parsed.ForEach(func(key, value gjson.Result) bool {
		name := strings.TrimSpace(key.String())
		if name == "" {
			return true
		}

		text := stringify(value)
		if partTypes[name] == models.PartTypePhone {
			text = e.normalizePhone(text)
		}

		values[name] = text

		return true
	})

	return values
}

// stringify flattens a JSON value: arrays join their non-empty items with ", ",
// objects join their non-empty members with " " in document order.
func stringify(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return strings.TrimSpace(value.String())
	case gjson.Number, gjson.True, gjson.False:
		return value.Raw
	case gjson.JSON:
		separator := " "
		if value.IsArray() {
			separator = ", "
		}

		var parts []string

		value.ForEach(func(_, item gjson.Result) bool {
			if text := stringify(item); text != "" {
				parts = append(parts, text)
			}

			return true
		})

		return strings.Join(parts, separator)
	default:
		return ""
	}
}

func (e *Extractor) normalizePhone(number string) string {
	if number == "" {
		return number
	}

	parsed, err := libphonenumber.Parse(number, e.DefaultRegion)
	if err != nil || !libphonenumber.IsValidNumber(parsed) {
		return number
	}

	return libphonenumber.Format(parsed, libphonenumber.E164)
}
