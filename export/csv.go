// Package export serializes a form's responses into a downloadable CSV
// document, fully in memory.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openformhq/openform/model"
)

// ErrNoResponses refuses an export with nothing to serialize.
var ErrNoResponses = errors.New("no responses to export")

const (
	timestampHeader = "Submission Timestamp"
	untitledColumn  = "Untitled Question"
	timestampLayout = "2006-01-02 15:04:05"
)

// Document builds the CSV: one header row, one row per response, a leading
// submission-timestamp column then one column per question in form order.
// Every field is double-quoted with internal quotes doubled, and the whole
// document is prefixed with a UTF-8 BOM so spreadsheet tools decode
// non-Latin text correctly.
func Document(form model.Form, responses []model.Response) ([]byte, error) {
	if len(responses) == 0 {
		return nil, ErrNoResponses
	}

	var doc strings.Builder
	doc.WriteString("\uFEFF")

	header := make([]string, 0, len(form.Questions)+1)
	header = append(header, timestampHeader)
	for _, q := range form.Questions {
		title := q.Title
		if title == "" {
			title = untitledColumn
		}
		header = append(header, title)
	}
	writeRow(&doc, header)

	for _, r := range responses {
		row := make([]string, 0, len(form.Questions)+1)
		row = append(row, r.SubmittedAt.Format(timestampLayout))
		for _, q := range form.Questions {
			row = append(row, model.FormatAnswer(r.Answers[q.ID]))
		}
		doc.WriteString("\n")
		writeRow(&doc, row)
	}

	return []byte(doc.String()), nil
}

func writeRow(doc *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			doc.WriteString(",")
		}
		doc.WriteString(`"`)
		doc.WriteString(strings.ReplaceAll(field, `"`, `""`))
		doc.WriteString(`"`)
	}
}

// Filename names the artifact: {form title or "form"}-responses-{ISO date}.csv
func Filename(form model.Form, now time.Time) string {
	title := form.Title
	if title == "" {
		title = "form"
	}
	return fmt.Sprintf("%s-responses-%s.csv", title, now.UTC().Format("2006-01-02"))
}
