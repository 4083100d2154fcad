package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/openformhq/openform/model"
)

// formStore is the sqlite-backed builder.Store: whole-snapshot updates by
// form id, scoped to the owning user. Last write wins; there is no version
// check between concurrent editing sessions.
type formStore struct {
	db *sql.DB
}

func (s formStore) Update(ctx context.Context, form *model.Form) error {
	questionsJSON, err := json.Marshal(form.Questions)
	if err != nil {
		return err
	}

	form.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE form
		SET
			title = ?,
			description = ?,
			slug = ?,
			status = ?,
			theme = ?,
			questions = ?,
			thank_you_message = ?,
			updated_at = ?
		WHERE	id = ?
			AND user_id = ?`,
		form.Title,
		form.Description,
		form.Slug,
		form.Status,
		form.Theme,
		string(questionsJSON),
		form.ThankYouMessage,
		form.UpdatedAt,
		form.ID,
		form.UserID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return sql.ErrNoRows
	}
	return nil
}

const formColumns = `
	id, user_id, title, description, slug, status, theme,
	questions, thank_you_message, created_at, updated_at`

func scanForm(row *sql.Row) (*model.Form, error) {
	form := model.Form{}
	var questionsJSON string
	err := row.Scan(
		&form.ID, &form.UserID, &form.Title, &form.Description, &form.Slug,
		&form.Status, &form.Theme, &questionsJSON, &form.ThankYouMessage,
		&form.CreatedAt, &form.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal([]byte(questionsJSON), &form.Questions)
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// loadForm fetches a form by id scoped to its owner. Forms owned by other
// users surface as sql.ErrNoRows, not as a permission error.
func loadForm(ctx context.Context, db *sql.DB, id string, userID int64) (*model.Form, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+formColumns+`
		FROM form
		WHERE	id = ?
			AND user_id = ?`,
		id, userID,
	)
	return scanForm(row)
}

// loadPublishedForm fetches a form by slug; drafts and closed forms are
// indistinguishable from missing ones.
func loadPublishedForm(ctx context.Context, db *sql.DB, slug string) (*model.Form, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+formColumns+`
		FROM form
		WHERE	slug = ?
			AND status = ?`,
		slug, model.StatusPublished,
	)
	return scanForm(row)
}

func loadResponses(ctx context.Context, db *sql.DB, formID string) ([]model.Response, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, form_id, submitted_at, answers
		FROM response
		WHERE form_id = ?
		ORDER BY submitted_at`,
		formID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		r := model.Response{}
		var answersJSON string
		err = rows.Scan(&r.ID, &r.FormID, &r.SubmittedAt, &answersJSON)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal([]byte(answersJSON), &r.Answers)
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
