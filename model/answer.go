package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FileUpload is the descriptor a file_upload answer carries. The file body
// itself lives in external object storage: URL points at it, Data is an
// inline base64 fallback used when no URL was produced.
type FileUpload struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url,omitempty"`
	Data string `json:"data,omitempty"`
}

// FileURL returns the retrievable location, preferring the storage URL over
// the inline payload.
func (f FileUpload) FileURL() string {
	if f.URL != "" {
		return f.URL
	}
	return f.Data
}

// AsFileUpload recognizes the file-upload shape in a loosely typed answer
// value: an object with a string name and either a url or a data string.
func AsFileUpload(v any) (FileUpload, bool) {
	switch file := v.(type) {
	case FileUpload:
		return file, true
	case map[string]any:
		name, ok := file["name"].(string)
		if !ok {
			return FileUpload{}, false
		}
		url, hasURL := file["url"].(string)
		data, hasData := file["data"].(string)
		if !hasURL && !hasData {
			return FileUpload{}, false
		}
		typ, _ := file["type"].(string)
		size, _ := file["size"].(float64)
		return FileUpload{Name: name, Type: typ, Size: int64(size), URL: url, Data: data}, true
	}
	return FileUpload{}, false
}

// ValidationError reports a submitted answer that does not match its
// question's declared type or constraints.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

func invalid(questionID, format string, args ...any) error {
	return &ValidationError{QuestionID: questionID, Reason: fmt.Sprintf(format, args...)}
}

// DecodeAnswers validates a raw submission payload against the form's
// question list and returns canonical answer values keyed by question id.
// Payload entries for unknown questions, values of the wrong variant for
// their question's declared type, out-of-bounds ratings, options outside
// the declared list, oversized files, and missing required answers are all
// rejected. Questions without a payload entry stay unanswered.
func DecodeAnswers(questions []Question, raw map[string]json.RawMessage) (map[string]any, error) {
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for id := range raw {
		if _, ok := byID[id]; !ok {
			return nil, invalid(id, "no such question")
		}
	}

	answers := make(map[string]any, len(raw))
	for _, q := range questions {
		payload, ok := raw[q.ID]
		if !ok || string(payload) == "null" {
			if q.Required {
				return nil, invalid(q.ID, "answer is required")
			}
			continue
		}

		value, err := decodeAnswer(q, payload)
		if err != nil {
			return nil, err
		}
		answers[q.ID] = value
	}
	return answers, nil
}

func decodeAnswer(q Question, payload json.RawMessage) (any, error) {
	switch q.Type {
	case ShortText, LongText, Phone:
		return decodeText(q, payload)

	case Email:
		text, err := decodeText(q, payload)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(text, "@") || strings.ContainsAny(text, " \t") {
			return nil, invalid(q.ID, "not a valid email address")
		}
		return text, nil

	case URL:
		text, err := decodeText(q, payload)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
			return nil, invalid(q.ID, "not a valid URL")
		}
		return text, nil

	case Date:
		text, err := decodeText(q, payload)
		if err != nil {
			return nil, err
		}
		if _, err := time.Parse("2006-01-02", text); err != nil {
			return nil, invalid(q.ID, "not a valid date")
		}
		return text, nil

	case Number:
		var n float64
		if err := json.Unmarshal(payload, &n); err != nil {
			return nil, invalid(q.ID, "expected a number")
		}
		return n, nil

	case Rating, OpinionScale:
		var n float64
		if err := json.Unmarshal(payload, &n); err != nil {
			return nil, invalid(q.ID, "expected a number")
		}
		if n != float64(int(n)) {
			return nil, invalid(q.ID, "expected a whole number")
		}
		min, max := q.ScaleBounds()
		if int(n) < min || int(n) > max {
			return nil, invalid(q.ID, "value out of range %d-%d", min, max)
		}
		return n, nil

	case YesNo:
		var b bool
		if err := json.Unmarshal(payload, &b); err != nil {
			return nil, invalid(q.ID, "expected a boolean")
		}
		return b, nil

	case Dropdown:
		var choice string
		if err := json.Unmarshal(payload, &choice); err != nil {
			return nil, invalid(q.ID, "expected an option")
		}
		if !containsOption(q.Options, choice) {
			return nil, invalid(q.ID, "not one of the available options")
		}
		return choice, nil

	case Checkboxes:
		var choices []string
		if err := json.Unmarshal(payload, &choices); err != nil {
			return nil, invalid(q.ID, "expected a list of options")
		}
		for _, choice := range choices {
			if !containsOption(q.Options, choice) {
				return nil, invalid(q.ID, "not one of the available options")
			}
		}
		if q.Required && len(choices) == 0 {
			return nil, invalid(q.ID, "answer is required")
		}
		return choices, nil

	case FileUploadQ:
		var file FileUpload
		if err := json.Unmarshal(payload, &file); err != nil {
			return nil, invalid(q.ID, "expected a file descriptor")
		}
		if file.Name == "" || (file.URL == "" && file.Data == "") {
			return nil, invalid(q.ID, "incomplete file descriptor")
		}
		if q.MaxFileSize > 0 && file.Size > int64(q.MaxFileSize)*1024*1024 {
			return nil, invalid(q.ID, "file exceeds the %d MB limit", q.MaxFileSize)
		}
		return file, nil
	}

	return nil, invalid(q.ID, "unknown question type %q", q.Type)
}

func decodeText(q Question, payload json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		return "", invalid(q.ID, "expected text")
	}
	if q.Required && strings.TrimSpace(text) == "" {
		return "", invalid(q.ID, "answer is required")
	}
	return text, nil
}

func containsOption(options []string, choice string) bool {
	for _, opt := range options {
		if opt == choice {
			return true
		}
	}
	return false
}

// ScaleBounds returns the effective min/max for rating and opinion_scale
// questions, falling back to the type's defaults when unset.
func (q Question) ScaleBounds() (min, max int) {
	min, max = q.MinValue, q.MaxValue
	if max == 0 {
		if q.Type == OpinionScale {
			max = 10
		} else {
			max = 5
		}
	}
	if min == 0 {
		min = 1
	}
	return min, max
}
