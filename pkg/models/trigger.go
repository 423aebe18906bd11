package models

// TriggerDefinition describes an integration trigger to the engine: how it is
// labelled in the editor, which hook it listens to, the options it stores and
// the tags it offers to actions.
type TriggerDefinition struct {
	Type          string            `json:"type"`
	Integration   string            `json:"integration"`
	Label         string            `json:"label"`
	SelectOption  string            `json:"select_option"`
	EditLabel     string            `json:"edit_label"`
	LogLabel      string            `json:"log_label"`
	Action        string            `json:"action"`
	Priority      int               `json:"priority"`
	AcceptedArgs  int               `json:"accepted_args"`
	Options       []TriggerOption   `json:"options"`
	Tags          map[string]TagDef `json:"tags"`
	OptionsSchema *JSONSchema       `json:"options_schema"`
}

// TriggerOption is an editor field bound to an options key.
type TriggerOption struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	OptionNoneLabel string `json:"option_none_label,omitempty"`
	OptionNoneValue string `json:"option_none_value,omitempty"`
	PostType        string `json:"post_type,omitempty"`
	Default         any    `json:"default,omitempty"`
}

// TagDef documents a tag actions can use to read data from the event.
type TagDef struct {
	Label   string `json:"label"`
	Type    string `json:"type"`
	Preview string `json:"preview"`
}
