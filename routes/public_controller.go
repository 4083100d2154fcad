package routes

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/openformhq/openform/app"
	"github.com/openformhq/openform/httpx"
	"github.com/openformhq/openform/log"
	"github.com/openformhq/openform/model"
	"github.com/openformhq/openform/themes"
)

// PublicGetForm serves a published form to respondents. Drafts and closed
// forms answer 404, same as forms that never existed.
func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		form, err := loadPublishedForm(r.Context(), app.DB, slug)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "public_get_form", slug)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_published_form", err)
			return
		}

		theme := themes.Get(form.Theme)
		render.JSON(w, r, map[string]any{
			"id":                form.ID,
			"title":             form.Title,
			"description":       form.Description,
			"slug":              form.Slug,
			"questions":         form.Questions,
			"thank_you_message": form.ThankYouMessage,
			"theme":             theme,
			"css_variables":     themes.CSSVariables(theme),
		})
	}
}

type submitRequest struct {
	Answers map[string]json.RawMessage `json:"answers"`
}

// PublicSubmitResponse validates a respondent's answers against the form's
// question list and stores the submission.
func PublicSubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		form, err := loadPublishedForm(r.Context(), app.DB, slug)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "public_submit", slug)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_published_form", err)
			return
		}

		req := submitRequest{}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "public_submit.parse_body")
			return
		}

		answers, err := model.DecodeAnswers(form.Questions, req.Answers)
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "public_submit.answers", "%s", validationErr)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "public_submit.decode", err)
			return
		}

		answersJSON, err := json.Marshal(answers)
		if err != nil {
			httpx.LogInternalError(w, "public_submit.marshal", err)
			return
		}

		id := uuid.NewString()
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO response (id, form_id, submitted_at, answers)
			VALUES (?, ?, ?, ?)`,
			id, form.ID, time.Now(), string(answersJSON),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":                id,
			"thank_you_message": form.ThankYouMessage,
		})
	}
}
