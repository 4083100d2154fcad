package model

import (
	"regexp"
	"strings"
	"time"
)

type FormStatus string

const (
	StatusDraft     FormStatus = "draft"
	StatusPublished FormStatus = "published"
	StatusClosed    FormStatus = "closed"
)

type QuestionType string

const (
	ShortText    QuestionType = "short_text"
	LongText     QuestionType = "long_text"
	Dropdown     QuestionType = "dropdown"
	Checkboxes   QuestionType = "checkboxes"
	Email        QuestionType = "email"
	Phone        QuestionType = "phone"
	Number       QuestionType = "number"
	Date         QuestionType = "date"
	Rating       QuestionType = "rating"
	OpinionScale QuestionType = "opinion_scale"
	YesNo        QuestionType = "yes_no"
	FileUploadQ  QuestionType = "file_upload"
	URL          QuestionType = "url"
)

// Labels rendered for yes_no answers everywhere a boolean leaves the system
// (charts, response tables, CSV exports).
const (
	YesLabel = "Yes"
	NoLabel  = "No"
)

type Form struct {
	ID              string     `json:"id"`
	UserID          int64      `json:"-"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Slug            string     `json:"slug"`
	Status          FormStatus `json:"status"`
	Theme           string     `json:"theme"`
	Questions       []Question `json:"questions"`
	ThankYouMessage string     `json:"thank_you_message"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Question is one typed prompt in a form. The optional attributes only
// apply to some types: Options to dropdown/checkboxes, MinValue/MaxValue to
// rating/opinion_scale, AllowedFileTypes/MaxFileSize to file_upload.
type Question struct {
	ID               string       `json:"id"`
	Type             QuestionType `json:"type"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	Required         bool         `json:"required"`
	Options          []string     `json:"options,omitempty"`
	MinValue         int          `json:"minValue,omitempty"`
	MaxValue         int          `json:"maxValue,omitempty"`
	Placeholder      string       `json:"placeholder,omitempty"`
	AllowedFileTypes []string     `json:"allowedFileTypes,omitempty"`
	MaxFileSize      int          `json:"maxFileSize,omitempty"` // megabytes
}

// Response is one respondent's submission: answers keyed by question id.
// At most one entry per question; a missing entry means unanswered.
// Responses are immutable once stored, except for owner deletion.
type Response struct {
	ID          string         `json:"id"`
	FormID      string         `json:"form_id"`
	SubmittedAt time.Time      `json:"submitted_at"`
	Answers     map[string]any `json:"answers"`
}

type ThemeConfig struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PrimaryColor    string `json:"primaryColor"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	AccentColor     string `json:"accentColor"`
	FontFamily      string `json:"fontFamily"`
}

var reSlugInvalid = regexp.MustCompile(`[^a-z0-9-]`)

// SanitizeSlug lowercases the input and strips every character outside
// [a-z0-9-]. "My Form!" becomes "myform".
func SanitizeSlug(raw string) string {
	return reSlugInvalid.ReplaceAllLiteralString(strings.ToLower(raw), "")
}
