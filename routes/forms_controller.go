package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/openformhq/openform/app"
	"github.com/openformhq/openform/builder"
	"github.com/openformhq/openform/httpx"
	"github.com/openformhq/openform/log"
	"github.com/openformhq/openform/model"
	"github.com/openformhq/openform/routes/middlewares"
)

type createFormRequest struct {
	Title string `json:"title"`
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "create_form.user")
			return
		}

		req := createFormRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "create_form.parse_body")
			return
		}

		id := uuid.NewString()
		slug := model.SanitizeSlug(req.Title)
		if slug == "" {
			slug = "form"
		}

		now := time.Now()
		// Walk candidate slugs until one is free; uuid fragments make a
		// second collision vanishingly unlikely.
		for attempt := 0; ; attempt++ {
			_, err = app.ExecContext(r.Context(), `
				INSERT INTO form (id, user_id, title, slug, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, userID, req.Title, slug, now, now,
			)
			if err == nil {
				break
			}

			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique && attempt < 3 {
				slug = model.SanitizeSlug(req.Title) + "-" + uuid.NewString()[:8]
				continue
			}
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":   id,
			"slug": slug,
		})
	}
}

type formListEntry struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Slug          string           `json:"slug"`
	Status        model.FormStatus `json:"status"`
	ResponseCount int              `json:"response_count"`
	ShareURL      string           `json:"share_url"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "list_forms.user")
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT
				f.id, f.title, f.slug, f.status, f.created_at, f.updated_at,
				(SELECT count(*) FROM response r WHERE r.form_id = f.id)
			FROM form f
			WHERE f.user_id = ?
			ORDER BY f.updated_at DESC`,
			userID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.list_forms", err)
			return
		}
		defer rows.Close()

		forms := []formListEntry{}
		for rows.Next() {
			entry := formListEntry{}
			err = rows.Scan(
				&entry.ID, &entry.Title, &entry.Slug, &entry.Status,
				&entry.CreatedAt, &entry.UpdatedAt, &entry.ResponseCount,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.list_forms.scan", err)
				return
			}
			if entry.Status == model.StatusPublished {
				entry.ShareURL = app.BaseURL + "/f/" + entry.Slug
			}
			forms = append(forms, entry)
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.list_forms.rows", err)
			return
		}

		render.JSON(w, r, forms)
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "get_form.user")
			return
		}

		id := chi.URLParam(r, "formId")
		form, err := loadForm(r.Context(), app.DB, id, userID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_form", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		render.JSON(w, r, form)
	}
}

// UpdateForm replaces the whole editable surface of a form with the
// submitted snapshot. Last write wins between concurrent editors.
func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "update_form.user")
			return
		}

		snap := builder.Snapshot{}
		err := render.DecodeJSON(r.Body, &snap)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "update_form.parse_body")
			return
		}

		id := chi.URLParam(r, "formId")
		form, err := loadForm(r.Context(), app.DB, id, userID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "update_form", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		session := builder.NewSession(*form, formStore{app.DB})
		if err = session.ApplySnapshot(snap); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "update_form.snapshot", "%s", err)
			return
		}

		err = session.Save(r.Context())
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "update_form", id)
			return
		}
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "update_form.slug", "slug already in use")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "delete_form.user")
			return
		}

		id := chi.URLParam(r, "formId")

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM response
			WHERE form_id IN (SELECT id FROM form WHERE id = ? AND user_id = ?)`,
			id, userID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_responses", err)
			return
		}

		res, err := tx.ExecContext(r.Context(), `
			DELETE FROM form WHERE id = ? AND user_id = ?`,
			id, userID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}

		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form.affected", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_form", id)
			return
		}

		if err = tx.Commit(); err != nil {
			httpx.LogInternalError(w, "db.delete_form.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// PublishForm flips a form between published and closed. Publishing
// requires at least one question.
func PublishForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "publish_form.user")
			return
		}

		id := chi.URLParam(r, "formId")
		form, err := loadForm(r.Context(), app.DB, id, userID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "publish_form", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		session := builder.NewSession(*form, formStore{app.DB})
		status, err := session.TogglePublish(r.Context())
		if errors.Is(err, builder.ErrNoQuestions) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "publish_form.empty", "%s", err)
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "publish_form", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.publish_form", err)
			return
		}

		resp := map[string]any{"status": status}
		if status == model.StatusPublished {
			resp["share_url"] = app.BaseURL + "/f/" + session.Form().Slug
		}
		render.JSON(w, r, resp)
	}
}
