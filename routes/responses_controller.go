package routes

import (
	"database/sql"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/openformhq/openform/analytics"
	"github.com/openformhq/openform/app"
	"github.com/openformhq/openform/export"
	"github.com/openformhq/openform/httpx"
	"github.com/openformhq/openform/log"
	"github.com/openformhq/openform/model"
	"github.com/openformhq/openform/routes/middlewares"
)

// responseCell is one rendered answer in the responses table. File answers
// carry their descriptor so the dashboard can link the upload; everything
// else is flattened to display text.
type responseCell struct {
	Text string            `json:"text"`
	File *responseCellFile `json:"file,omitempty"`
}

type responseCellFile struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	SizeText string `json:"sizeText"`
	URL      string `json:"url,omitempty"`
}

type responseRow struct {
	ID          string         `json:"id"`
	SubmittedAt time.Time      `json:"submitted_at"`
	Cells       []responseCell `json:"cells"`
}

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "list_responses.user")
			return
		}

		id := chi.URLParam(r, "formId")
		form, err := loadForm(r.Context(), app.DB, id, userID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "list_responses", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		responses, err := loadResponses(r.Context(), app.DB, form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.list_responses", err)
			return
		}

		rows := make([]responseRow, 0, len(responses))
		for _, resp := range responses {
			row := responseRow{
				ID:          resp.ID,
				SubmittedAt: resp.SubmittedAt,
				Cells:       make([]responseCell, 0, len(form.Questions)),
			}
			for _, q := range form.Questions {
				row.Cells = append(row.Cells, renderCell(resp.Answers[q.ID]))
			}
			rows = append(rows, row)
		}

		render.JSON(w, r, map[string]any{
			"questions": form.Questions,
			"rows":      rows,
		})
	}
}

func renderCell(answer any) responseCell {
	cell := responseCell{Text: model.FormatAnswer(answer)}
	if file, ok := model.AsFileUpload(answer); ok {
		cell.File = &responseCellFile{
			Name:     file.Name,
			Type:     file.Type,
			Size:     file.Size,
			SizeText: humanize.Bytes(uint64(file.Size)),
			URL:      file.FileURL(),
		}
	}
	return cell
}

func DeleteResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "delete_response.user")
			return
		}

		formID := chi.URLParam(r, "formId")
		responseID := chi.URLParam(r, "responseId")

		res, err := app.ExecContext(r.Context(), `
			DELETE FROM response
			WHERE	id = ?
				AND form_id IN (SELECT id FROM form WHERE id = ? AND user_id = ?)`,
			responseID, formID, userID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_response", err)
			return
		}

		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_response.affected", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_response", responseID)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ExportResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "export_responses.user")
			return
		}

		id := chi.URLParam(r, "formId")
		form, err := loadForm(r.Context(), app.DB, id, userID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "export_responses", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		responses, err := loadResponses(r.Context(), app.DB, form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.list_responses", err)
			return
		}

		doc, err := export.Document(*form, responses)
		if errors.Is(err, export.ErrNoResponses) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "export_responses.empty", "%s", err)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "export_responses", err)
			return
		}

		disposition := mime.FormatMediaType("attachment", map[string]string{
			"filename": export.Filename(*form, time.Now()),
		})
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", disposition)
		w.Write(doc)
	}
}

type questionAnalytics struct {
	Question model.Question          `json:"question"`
	Answered int                     `json:"answered"`
	Chart    []analytics.ChartRecord `json:"chart,omitempty"`
	Preview  []string                `json:"preview,omitempty"`
}

func FormAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "form_analytics.user")
			return
		}

		id := chi.URLParam(r, "formId")
		form, err := loadForm(r.Context(), app.DB, id, userID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "form_analytics", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		responses, err := loadResponses(r.Context(), app.DB, form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.list_responses", err)
			return
		}

		perQuestion := make([]questionAnalytics, 0, len(form.Questions))
		for _, q := range form.Questions {
			qa := questionAnalytics{Question: q}
			if analytics.Chartable(q.Type) {
				qa.Chart, qa.Answered = analytics.ChartData(q, responses)
			} else {
				qa.Preview = analytics.TextPreview(q, responses)
				for _, resp := range responses {
					if _, answered := resp.Answers[q.ID]; answered {
						qa.Answered++
					}
				}
			}
			perQuestion = append(perQuestion, qa)
		}

		render.JSON(w, r, map[string]any{
			"summary":   analytics.Summarize(*form, responses),
			"questions": perQuestion,
		})
	}
}
