package routes

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openformhq/openform/model"
)

func feedbackForm() model.Form {
	return model.Form{
		Title: "Event Feedback",
		Slug:  "event-feedback",
		Questions: []model.Question{
			{ID: "q1", Type: model.ShortText, Title: "Your name", Required: true},
			{ID: "q2", Type: model.Rating, Title: "Score"},
			{ID: "q3", Type: model.FileUploadQ, Title: "Photo"},
		},
	}
}

func TestListResponses(t *testing.T) {
	a, _, userID := testApp(t)
	form := seedForm(t, a, userID, feedbackForm())
	seedResponse(t, a, form.ID, map[string]any{
		"q1": "Anna",
		"q2": float64(4),
		"q3": map[string]any{"name": "pic.png", "type": "image/png", "size": float64(2048), "url": "https://files/pic.png"},
	})
	seedResponse(t, a, form.ID, map[string]any{"q1": "Bo"})

	w := httptest.NewRecorder()
	ListResponses(a)(w, request("GET", "/", "", userID, map[string]string{"formId": form.ID}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var result struct {
		Questions []model.Question `json:"questions"`
		Rows      []struct {
			ID    string `json:"id"`
			Cells []struct {
				Text string `json:"text"`
				File *struct {
					Name     string `json:"name"`
					SizeText string `json:"sizeText"`
					URL      string `json:"url"`
				} `json:"file"`
			} `json:"cells"`
		} `json:"rows"`
	}
	decodeBody(t, w, &result)

	if len(result.Questions) != 3 {
		t.Fatalf("question count = %d, want 3", len(result.Questions))
	}
	if len(result.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(result.Rows))
	}

	first := result.Rows[0]
	if first.Cells[0].Text != "Anna" {
		t.Errorf("cell text = %q", first.Cells[0].Text)
	}
	if first.Cells[1].Text != "4" {
		t.Errorf("rating cell = %q, want %q", first.Cells[1].Text, "4")
	}
	if first.Cells[2].File == nil {
		t.Fatal("file answer should carry a descriptor")
	}
	if first.Cells[2].File.Name != "pic.png" || first.Cells[2].File.URL != "https://files/pic.png" {
		t.Errorf("file descriptor = %+v", first.Cells[2].File)
	}
	if first.Cells[2].File.SizeText == "" {
		t.Error("file descriptor should include a human-readable size")
	}

	second := result.Rows[1]
	if second.Cells[1].Text != "-" {
		t.Errorf("unanswered cell = %q, want %q", second.Cells[1].Text, "-")
	}
}

func TestDeleteResponse(t *testing.T) {
	a, _, userID := testApp(t)
	form := seedForm(t, a, userID, feedbackForm())
	responseID := seedResponse(t, a, form.ID, map[string]any{"q1": "Anna"})

	w := httptest.NewRecorder()
	DeleteResponse(a)(w, request("DELETE", "/", "", userID,
		map[string]string{"formId": form.ID, "responseId": responseID}))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	DeleteResponse(a)(w, request("DELETE", "/", "", userID,
		map[string]string{"formId": form.ID, "responseId": responseID}))
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestDeleteResponseScopedToOwner(t *testing.T) {
	a, _, userID := testApp(t)
	form := seedForm(t, a, userID, feedbackForm())
	responseID := seedResponse(t, a, form.ID, map[string]any{"q1": "Anna"})

	res, err := a.Exec(`INSERT INTO user (email, password_hash, verified) VALUES ('other@example.com', 'x', 1)`)
	if err != nil {
		t.Fatal(err)
	}
	otherID, _ := res.LastInsertId()

	w := httptest.NewRecorder()
	DeleteResponse(a)(w, request("DELETE", "/", "", otherID,
		map[string]string{"formId": form.ID, "responseId": responseID}))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for another user's response", w.Code)
	}

	var n int
	if err := a.QueryRow(`SELECT count(*) FROM response WHERE id = ?`, responseID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Error("response must survive a foreign delete attempt")
	}
}

func TestExportResponses(t *testing.T) {
	a, _, userID := testApp(t)
	form := seedForm(t, a, userID, feedbackForm())
	seedResponse(t, a, form.ID, map[string]any{"q1": "Anna", "q2": float64(5)})

	w := httptest.NewRecorder()
	ExportResponses(a)(w, request("GET", "/", "", userID, map[string]string{"formId": form.ID}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	disposition := w.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, `attachment; filename="Event Feedback-responses-`) {
		t.Errorf("content disposition = %q", disposition)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "\uFEFF") {
		t.Error("export must start with a UTF-8 BOM")
	}
	if !strings.Contains(body, `"Your name"`) || !strings.Contains(body, `"Anna"`) {
		t.Errorf("export body missing expected cells: %q", body)
	}
}

func TestExportResponsesEscapesFilename(t *testing.T) {
	a, _, userID := testApp(t)
	form := feedbackForm()
	form.Title = "Hostile \"Title\"\r\nX-Injected: yes"
	form = seedForm(t, a, userID, form)
	seedResponse(t, a, form.ID, map[string]any{"q1": "Anna"})

	w := httptest.NewRecorder()
	ExportResponses(a)(w, request("GET", "/", "", userID, map[string]string{"formId": form.ID}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if got := w.Header().Get("X-Injected"); got != "" {
		t.Errorf("title leaked into a separate header: %q", got)
	}

	disposition := w.Header().Get("Content-Disposition")
	if strings.ContainsAny(disposition, "\r\n") {
		t.Errorf("header contains raw control characters: %q", disposition)
	}
	mediaType, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		t.Fatalf("header %q does not parse: %v", disposition, err)
	}
	if mediaType != "attachment" {
		t.Errorf("media type = %q, want attachment", mediaType)
	}
	if !strings.HasPrefix(params["filename"], "Hostile \"Title\"") {
		t.Errorf("filename round-trip = %q", params["filename"])
	}
}

func TestExportResponsesEmpty(t *testing.T) {
	a, _, userID := testApp(t)
	form := seedForm(t, a, userID, feedbackForm())

	w := httptest.NewRecorder()
	ExportResponses(a)(w, request("GET", "/", "", userID, map[string]string{"formId": form.ID}))
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 for empty export", w.Code)
	}
}

func TestFormAnalytics(t *testing.T) {
	a, _, userID := testApp(t)
	form := seedForm(t, a, userID, feedbackForm())
	seedResponse(t, a, form.ID, map[string]any{"q1": "loved it", "q2": float64(5)})
	seedResponse(t, a, form.ID, map[string]any{"q1": "great", "q2": float64(5)})
	seedResponse(t, a, form.ID, map[string]any{"q2": float64(3)})

	w := httptest.NewRecorder()
	FormAnalytics(a)(w, request("GET", "/", "", userID, map[string]string{"formId": form.ID}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var result struct {
		Summary *struct {
			TotalResponses int `json:"total_responses"`
			CompletionRate int `json:"completion_rate"`
		} `json:"summary"`
		Questions []struct {
			Question model.Question `json:"question"`
			Answered int            `json:"answered"`
			Chart    []struct {
				Label string  `json:"label"`
				Count int     `json:"count"`
				Pct   float64 `json:"percentage"`
			} `json:"chart"`
			Preview []string `json:"preview"`
		} `json:"questions"`
	}
	decodeBody(t, w, &result)

	if result.Summary == nil {
		t.Fatal("summary missing")
	}
	if result.Summary.TotalResponses != 3 {
		t.Errorf("total = %d, want 3", result.Summary.TotalResponses)
	}
	// q1 is required and one response skipped it
	if result.Summary.CompletionRate != 67 {
		t.Errorf("completion rate = %d, want 67", result.Summary.CompletionRate)
	}

	if len(result.Questions) != 3 {
		t.Fatalf("question count = %d", len(result.Questions))
	}

	text := result.Questions[0]
	if len(text.Chart) != 0 {
		t.Error("free text questions are previewed, not charted")
	}
	if len(text.Preview) != 2 || text.Preview[0] != "great" {
		t.Errorf("preview = %v, want most recent first", text.Preview)
	}
	if text.Answered != 2 {
		t.Errorf("answered = %d, want 2", text.Answered)
	}

	rating := result.Questions[1]
	if len(rating.Chart) != 2 {
		t.Fatalf("rating chart = %+v, want two buckets", rating.Chart)
	}
	// ordinal buckets sort ascending by value
	if rating.Chart[0].Label != "3" || rating.Chart[1].Label != "5" {
		t.Errorf("bucket order = [%s, %s], want [3, 5]", rating.Chart[0].Label, rating.Chart[1].Label)
	}
	if rating.Chart[1].Count != 2 {
		t.Errorf("bucket 5 count = %d, want 2", rating.Chart[1].Count)
	}
}

func TestFormAnalyticsEmptySummaryIsNull(t *testing.T) {
	a, _, userID := testApp(t)
	form := seedForm(t, a, userID, feedbackForm())

	w := httptest.NewRecorder()
	FormAnalytics(a)(w, request("GET", "/", "", userID, map[string]string{"formId": form.ID}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var result map[string]json.RawMessage
	decodeBody(t, w, &result)
	if string(result["summary"]) != "null" {
		t.Errorf("summary = %s, want null for no responses", result["summary"])
	}
}
