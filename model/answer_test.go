package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func raw(pairs map[string]string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(pairs))
	for id, payload := range pairs {
		out[id] = json.RawMessage(payload)
	}
	return out
}

func wantValidationError(t *testing.T, err error, questionID, reason string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if verr.QuestionID != questionID {
		t.Errorf("QuestionID = %q, want %q", verr.QuestionID, questionID)
	}
	if reason != "" && !strings.Contains(verr.Reason, reason) {
		t.Errorf("Reason = %q, want mention of %q", verr.Reason, reason)
	}
}

func TestDecodeAnswersHappyPath(t *testing.T) {
	questions := []Question{
		{ID: "name", Type: ShortText, Required: true},
		{ID: "contact", Type: Email},
		{ID: "site", Type: URL},
		{ID: "when", Type: Date},
		{ID: "guests", Type: Number},
		{ID: "score", Type: Rating},
		{ID: "coming", Type: YesNo},
		{ID: "meal", Type: Dropdown, Options: []string{"veg", "fish"}},
		{ID: "drinks", Type: Checkboxes, Options: []string{"tea", "coffee", "juice"}},
		{ID: "cv", Type: FileUploadQ, MaxFileSize: 10},
	}
	payload := raw(map[string]string{
		"name":    `"Anna"`,
		"contact": `"anna@example.com"`,
		"site":    `"https://example.com"`,
		"when":    `"2026-04-01"`,
		"guests":  `3`,
		"score":   `4`,
		"coming":  `true`,
		"meal":    `"veg"`,
		"drinks":  `["tea","juice"]`,
		"cv":      `{"name":"cv.pdf","type":"application/pdf","size":2048,"url":"https://files/cv.pdf"}`,
	})

	answers, err := DecodeAnswers(questions, payload)
	if err != nil {
		t.Fatalf("DecodeAnswers() error = %v", err)
	}

	if answers["name"] != "Anna" {
		t.Errorf("name = %v", answers["name"])
	}
	if answers["guests"] != float64(3) {
		t.Errorf("guests = %v, want 3", answers["guests"])
	}
	if answers["coming"] != true {
		t.Errorf("coming = %v, want true", answers["coming"])
	}
	if drinks, ok := answers["drinks"].([]string); !ok || len(drinks) != 2 {
		t.Errorf("drinks = %v, want two options", answers["drinks"])
	}
	file, ok := answers["cv"].(FileUpload)
	if !ok || file.Name != "cv.pdf" {
		t.Errorf("cv = %v, want FileUpload descriptor", answers["cv"])
	}
}

func TestDecodeAnswersUnknownQuestion(t *testing.T) {
	questions := []Question{{ID: "q1", Type: ShortText}}
	_, err := DecodeAnswers(questions, raw(map[string]string{"ghost": `"boo"`}))
	wantValidationError(t, err, "ghost", "no such question")
}

func TestDecodeAnswersMissingRequired(t *testing.T) {
	questions := []Question{{ID: "q1", Type: ShortText, Required: true}}

	_, err := DecodeAnswers(questions, nil)
	wantValidationError(t, err, "q1", "required")

	// explicit null counts as unanswered
	_, err = DecodeAnswers(questions, raw(map[string]string{"q1": `null`}))
	wantValidationError(t, err, "q1", "required")
}

func TestDecodeAnswersOptionalSkipped(t *testing.T) {
	questions := []Question{{ID: "q1", Type: ShortText}}

	answers, err := DecodeAnswers(questions, nil)
	if err != nil {
		t.Fatalf("DecodeAnswers() error = %v", err)
	}
	if _, present := answers["q1"]; present {
		t.Error("unanswered optional question should not appear in the result")
	}
}

func TestDecodeAnswersRejections(t *testing.T) {
	tests := []struct {
		name     string
		question Question
		payload  string
		reason   string
	}{
		{"text wrong variant", Question{ID: "q", Type: ShortText}, `42`, "expected text"},
		{"email without at", Question{ID: "q", Type: Email}, `"not-an-email"`, "email"},
		{"email with space", Question{ID: "q", Type: Email}, `"a b@example.com"`, "email"},
		{"url without scheme", Question{ID: "q", Type: URL}, `"example.com"`, "URL"},
		{"bad date", Question{ID: "q", Type: Date}, `"01/04/2026"`, "date"},
		{"number wrong variant", Question{ID: "q", Type: Number}, `"three"`, "number"},
		{"rating fractional", Question{ID: "q", Type: Rating}, `3.5`, "whole"},
		{"rating above default max", Question{ID: "q", Type: Rating}, `6`, "range"},
		{"rating below min", Question{ID: "q", Type: Rating}, `0`, "range"},
		{"opinion above default max", Question{ID: "q", Type: OpinionScale}, `11`, "range"},
		{"yes_no wrong variant", Question{ID: "q", Type: YesNo}, `"yes"`, "boolean"},
		{"dropdown off list", Question{ID: "q", Type: Dropdown, Options: []string{"a"}}, `"b"`, "options"},
		{"checkboxes off list", Question{ID: "q", Type: Checkboxes, Options: []string{"a"}}, `["a","b"]`, "options"},
		{"checkboxes required empty", Question{ID: "q", Type: Checkboxes, Required: true, Options: []string{"a"}}, `[]`, "required"},
		{"file without name", Question{ID: "q", Type: FileUploadQ}, `{"url":"https://x"}`, "incomplete"},
		{"file without location", Question{ID: "q", Type: FileUploadQ}, `{"name":"a.txt"}`, "incomplete"},
		{"file too large", Question{ID: "q", Type: FileUploadQ, MaxFileSize: 1}, `{"name":"a.bin","url":"https://x","size":2097153}`, "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAnswers([]Question{tt.question}, raw(map[string]string{"q": tt.payload}))
			wantValidationError(t, err, "q", tt.reason)
		})
	}
}

func TestDecodeAnswersCustomScaleBounds(t *testing.T) {
	q := Question{ID: "q", Type: OpinionScale, MinValue: 0, MaxValue: 10}

	// MinValue 0 falls back to 1
	if _, err := DecodeAnswers([]Question{q}, raw(map[string]string{"q": `0`})); err == nil {
		t.Error("value below the effective minimum should be rejected")
	}
	if _, err := DecodeAnswers([]Question{q}, raw(map[string]string{"q": `10`})); err != nil {
		t.Errorf("value at the maximum should pass, got %v", err)
	}
}

func TestScaleBounds(t *testing.T) {
	tests := []struct {
		name     string
		question Question
		min, max int
	}{
		{"rating defaults", Question{Type: Rating}, 1, 5},
		{"opinion defaults", Question{Type: OpinionScale}, 1, 10},
		{"explicit bounds", Question{Type: Rating, MinValue: 2, MaxValue: 7}, 2, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := tt.question.ScaleBounds()
			if min != tt.min || max != tt.max {
				t.Errorf("ScaleBounds() = %d, %d, want %d, %d", min, max, tt.min, tt.max)
			}
		})
	}
}

func TestAsFileUpload(t *testing.T) {
	file, ok := AsFileUpload(map[string]any{
		"name": "photo.png",
		"type": "image/png",
		"size": float64(1024),
		"url":  "https://files/photo.png",
	})
	if !ok {
		t.Fatal("AsFileUpload() should recognize a file descriptor map")
	}
	if file.Name != "photo.png" || file.Size != 1024 {
		t.Errorf("file = %+v", file)
	}

	if _, ok := AsFileUpload(map[string]any{"name": "x"}); ok {
		t.Error("a map without url or data is not a file descriptor")
	}
	if _, ok := AsFileUpload("just text"); ok {
		t.Error("plain text is not a file descriptor")
	}
}

func TestFileURLPrefersStorageURL(t *testing.T) {
	withURL := FileUpload{URL: "https://files/a", Data: "aGk="}
	if got := withURL.FileURL(); got != "https://files/a" {
		t.Errorf("FileURL() = %q", got)
	}
	inline := FileUpload{Data: "aGk="}
	if got := inline.FileURL(); got != "aGk=" {
		t.Errorf("FileURL() = %q", got)
	}
}
