package forms

import (
	"testing"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/stretchr/testify/assert"
)

func extract(submission []byte) map[string]string {
	return NewExtractor("").Values(submission, models.Form{})
}

func TestExtractor_ValuesScalars(t *testing.T) {
	submission := []byte(`{
		"single_line_text_1": "  Ada Lovelace ",
		"number_2": 42,
		"decimal_3": 1.5,
		"checkbox_4": true,
		"optional_5": null
	}`)

	assert.Equal(t, map[string]string{
		"single_line_text_1": "Ada Lovelace",
		"number_2":           "42",
		"decimal_3":          "1.5",
		"checkbox_4":         "true",
		"optional_5":         "",
	}, extract(submission))
}

func TestExtractor_ValuesArraysAndObjects(t *testing.T) {
	submission := []byte(`{
		"multiple_choice_1": ["Red", "", "Blue"],
		"address_2": {"street": "1 Main St", "city": "Springfield", "zip": ""},
		"matrix_3": [["a", "b"], ["c"]]
	}`)

	assert.Equal(t, map[string]string{
		"multiple_choice_1": "Red, Blue",
		"address_2":         "1 Main St Springfield",
		"matrix_3":          "a, b, c",
	}, extract(submission))
}

func TestExtractor_ValuesSkipsBlankKeys(t *testing.T) {
	values := extract([]byte(`{"": "x", " name ": "Ada"}`))

	assert.Equal(t, map[string]string{"name": "Ada"}, values)
}

func TestExtractor_ValuesNotAnObject(t *testing.T) {
	assert.Empty(t, extract([]byte(`["a"]`)))
	assert.Empty(t, extract([]byte(`not json`)))
	assert.Empty(t, extract(nil))
}

func TestExtractor_NormalizesPhoneParts(t *testing.T) {
	form := models.Form{
		ID: 3,
		Parts: []models.FormPart{
			{ID: "phone_1", Type: models.PartTypePhone},
			{ID: "phone_2", Type: models.PartTypePhone},
			{ID: "text_3", Type: "single_line_text"},
		},
	}
	submission := []byte(`{"phone_1": "(201) 555-0123", "phone_2": "call me", "text_3": "(201) 555-0123"}`)

	values := NewExtractor("us").Values(submission, form)

	assert.Equal(t, "+12015550123", values["phone_1"])
	assert.Equal(t, "call me", values["phone_2"])
	assert.Equal(t, "(201) 555-0123", values["text_3"])
}

func TestExtractor_InternationalPhoneWithoutRegion(t *testing.T) {
	form := models.Form{Parts: []models.FormPart{{ID: "phone", Type: models.PartTypePhone}}}

	values := NewExtractor("").Values([]byte(`{"phone": "+44 121 234 5678"}`), form)

	assert.Equal(t, "+441212345678", values["phone"])
}
