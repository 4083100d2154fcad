// Package questions is the static catalog of supported question types:
// display metadata for the builder palette and the default attributes a
// freshly added question starts with.
package questions

import (
	"github.com/google/uuid"

	"github.com/openformhq/openform/model"
)

type TypeInfo struct {
	Type        model.QuestionType `json:"type"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Defaults    model.Question     `json:"-"`
}

var Types = []TypeInfo{
	{
		Type:        model.ShortText,
		Label:       "Short Text",
		Description: "Single line text input",
		Icon:        "type",
		Defaults:    model.Question{Placeholder: "Type your answer here..."},
	},
	{
		Type:        model.LongText,
		Label:       "Long Text",
		Description: "Multi-line text area",
		Icon:        "align-left",
		Defaults:    model.Question{Placeholder: "Type your answer here..."},
	},
	{
		Type:        model.Dropdown,
		Label:       "Dropdown",
		Description: "Pick one option from a list",
		Icon:        "list",
		Defaults:    model.Question{Options: []string{"Option 1", "Option 2", "Option 3"}},
	},
	{
		Type:        model.Checkboxes,
		Label:       "Checkboxes",
		Description: "Pick multiple options from a list",
		Icon:        "check-square",
		Defaults:    model.Question{Options: []string{"Option 1", "Option 2", "Option 3"}},
	},
	{
		Type:        model.Email,
		Label:       "Email",
		Description: "Email address input",
		Icon:        "mail",
		Defaults:    model.Question{Placeholder: "name@example.com"},
	},
	{
		Type:        model.Phone,
		Label:       "Phone",
		Description: "Phone number input",
		Icon:        "phone",
		Defaults:    model.Question{Placeholder: "+1 (555) 000-0000"},
	},
	{
		Type:        model.Number,
		Label:       "Number",
		Description: "Numeric input",
		Icon:        "hash",
		Defaults:    model.Question{Placeholder: "0"},
	},
	{
		Type:        model.Date,
		Label:       "Date",
		Description: "Date picker",
		Icon:        "calendar",
	},
	{
		Type:        model.Rating,
		Label:       "Rating",
		Description: "Star rating (1-5)",
		Icon:        "star",
		Defaults:    model.Question{MinValue: 1, MaxValue: 5},
	},
	{
		Type:        model.OpinionScale,
		Label:       "Opinion Scale",
		Description: "Numeric scale (1-10)",
		Icon:        "gauge",
		Defaults:    model.Question{MinValue: 1, MaxValue: 10},
	},
	{
		Type:        model.YesNo,
		Label:       "Yes / No",
		Description: "Simple yes or no choice",
		Icon:        "thumbs-up",
	},
	{
		Type:        model.FileUploadQ,
		Label:       "File Upload",
		Description: "Upload images or PDF files",
		Icon:        "upload",
		Defaults: model.Question{
			AllowedFileTypes: []string{"image/*", "application/pdf"},
			MaxFileSize:      10, // MB
		},
	},
	{
		Type:        model.URL,
		Label:       "Website URL",
		Description: "Link input",
		Icon:        "link",
		Defaults:    model.Question{Placeholder: "https://example.com"},
	},
}

// Lookup finds the catalog entry for a type. Unknown types are a soft miss,
// not an error: callers decide how to degrade.
func Lookup(t model.QuestionType) (TypeInfo, bool) {
	for _, info := range Types {
		if info.Type == t {
			return info, true
		}
	}
	return TypeInfo{}, false
}

// CreateDefault builds a fresh question of the given type: new unique id,
// empty title and description, not required, type defaults merged in.
func CreateDefault(t model.QuestionType) (model.Question, bool) {
	info, ok := Lookup(t)
	if !ok {
		return model.Question{}, false
	}

	q := info.Defaults
	q.ID = uuid.NewString()
	q.Type = t

	// copy the slices so edits to one question never leak into the catalog
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	if q.AllowedFileTypes != nil {
		q.AllowedFileTypes = append([]string(nil), q.AllowedFileTypes...)
	}
	return q, true
}
