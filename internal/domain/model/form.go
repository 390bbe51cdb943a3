package model

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldFile     FieldType = "file"
	FieldUnknown  FieldType = "unknown"
)

func FieldTypes() []FieldType {
	return []FieldType{FieldText, FieldSelect, FieldRadio, FieldCheckbox, FieldFile, FieldUnknown}
}

// FormField is an ephemeral record describing one visible field of the form
// wizard's current step. The target markup is not known in advance, so the
// form is always represented as a runtime-classified sequence of these.
type FormField struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	Type            FieldType `json:"type"`
	Required        bool      `json:"required"`
	Options         []string  `json:"options,omitempty"`
	CurrentValue    string    `json:"current_value,omitempty"`
	ValidationError string    `json:"validation_error,omitempty"`
}
