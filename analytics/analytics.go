// Package analytics derives chart-ready distributions and summary
// statistics from responses already loaded in memory. Everything here is a
// pure transformation; no storage access.
package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/openformhq/openform/model"
)

// ChartRecord is one bar or pie slice: a distinct observed answer value
// with its count and share of all tallied answers.
type ChartRecord struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Chartable reports whether a question type's answers summarize into a
// distribution. Everything else is treated as free text.
func Chartable(t model.QuestionType) bool {
	switch t {
	case model.Dropdown, model.Checkboxes, model.YesNo, model.Rating, model.OpinionScale:
		return true
	}
	return false
}

// ChartData tallies the answers for one question across all responses.
// List answers fan out one count per element; yes_no booleans are tallied
// under the Yes/No labels. Rating and opinion_scale distributions sort
// ascending by the numeric label, all other types by count descending with
// encounter order breaking ties. Returns the records and the total number
// of tallied answers.
func ChartData(q model.Question, responses []model.Response) ([]ChartRecord, int) {
	counts := make(map[string]int)
	var order []string
	total := 0

	tally := func(label string) {
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
		total++
	}

	for _, r := range responses {
		answer, ok := r.Answers[q.ID]
		if !ok || answer == nil {
			continue
		}

		switch values := answer.(type) {
		case []any:
			for _, v := range values {
				tally(model.Stringify(v))
			}
		case []string:
			for _, v := range values {
				tally(v)
			}
		case bool:
			if q.Type == model.YesNo {
				if values {
					tally(model.YesLabel)
				} else {
					tally(model.NoLabel)
				}
			} else {
				tally(model.Stringify(values))
			}
		default:
			tally(model.Stringify(answer))
		}
	}

	records := make([]ChartRecord, 0, len(order))
	for _, label := range order {
		count := counts[label]
		records = append(records, ChartRecord{
			Label:      label,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}

	if q.Type == model.Rating || q.Type == model.OpinionScale {
		sort.SliceStable(records, func(i, j int) bool {
			return numericLabel(records[i].Label) < numericLabel(records[j].Label)
		})
	} else {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Count > records[j].Count
		})
	}

	return records, total
}

func numericLabel(label string) float64 {
	n, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return math.Inf(1)
	}
	return n
}

// TextPreview returns the last 5 non-empty answers for a free-text
// question, most recent first.
func TextPreview(q model.Question, responses []model.Response) []string {
	var answered []string
	for _, r := range responses {
		answer, ok := r.Answers[q.ID]
		if !ok || answer == nil {
			continue
		}
		text := model.FormatAnswer(answer)
		if strings.TrimSpace(text) == "" || text == "-" {
			continue
		}
		answered = append(answered, text)
	}

	if len(answered) > 5 {
		answered = answered[len(answered)-5:]
	}
	for i, j := 0, len(answered)-1; i < j; i, j = i+1, j-1 {
		answered[i], answered[j] = answered[j], answered[i]
	}
	return answered
}

// Summary is the whole-form statistics panel.
type Summary struct {
	TotalResponses int       `json:"total_responses"`
	CompletionRate int       `json:"completion_rate"` // percent, rounded
	LastSubmission time.Time `json:"last_submission"`
}

// Summarize computes the summary panel, or nil for an empty response list:
// callers render an empty state instead.
func Summarize(form model.Form, responses []model.Response) *Summary {
	if len(responses) == 0 {
		return nil
	}

	var required []model.Question
	for _, q := range form.Questions {
		if q.Required {
			required = append(required, q)
		}
	}

	completed := 0
	last := responses[0].SubmittedAt
	for _, r := range responses {
		if r.SubmittedAt.After(last) {
			last = r.SubmittedAt
		}

		answeredAll := true
		for _, q := range required {
			if answer, ok := r.Answers[q.ID]; !ok || answer == nil {
				answeredAll = false
				break
			}
		}
		if answeredAll {
			completed++
		}
	}

	return &Summary{
		TotalResponses: len(responses),
		CompletionRate: int(math.Round(float64(completed) / float64(len(responses)) * 100)),
		LastSubmission: last,
	}
}
