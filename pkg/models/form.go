package models

// Form part types with value normalization.
const (
	PartTypePhone = "phone"
)

// Form is the form record handed over by the form plugin with each submission.
type Form struct {
	ID    int64      `json:"ID"`
	Title string     `json:"post_title"`
	Parts []FormPart `json:"parts"      validate:"dive"`
}

// FormPart describes one field of a form.
type FormPart struct {
	ID    string `json:"id"    validate:"required"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// PartTypes indexes part types by part id.
func (f Form) PartTypes() map[string]string {
	types := make(map[string]string, len(f.Parts))
	for _, part := range f.Parts {
		types[part.ID] = part.Type
	}

	return types
}
