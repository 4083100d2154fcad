// Package builder holds a form-under-edit in memory and synchronizes
// whole snapshots to the store on explicit save or publish. Edits only
// mutate local state; nothing is persisted until Save or TogglePublish,
// and a failed persist leaves the session unchanged and still dirty.
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/openformhq/openform/model"
	"github.com/openformhq/openform/questions"
)

var (
	// ErrNoQuestions blocks publishing a form with an empty question list.
	ErrNoQuestions = errors.New("at least one question is required to publish")

	ErrUnknownType     = errors.New("unknown question type")
	ErrUnknownQuestion = errors.New("no such question")
	ErrBadOrder        = errors.New("order is not a permutation of the question list")
)

// Store persists a full form snapshot. Implementations must either apply
// the whole record or fail without partial effect.
type Store interface {
	Update(ctx context.Context, form *model.Form) error
}

// Session is an in-memory editing session over one form.
type Session struct {
	form     model.Form
	selected string
	dirty    bool
	store    Store
}

func NewSession(form model.Form, store Store) *Session {
	return &Session{form: form, store: store}
}

func (s *Session) Form() model.Form { return s.form }
func (s *Session) Dirty() bool      { return s.dirty }

// Selected returns the question currently targeted by the editor pane.
func (s *Session) Selected() (model.Question, bool) {
	for _, q := range s.form.Questions {
		if q.ID == s.selected {
			return q, true
		}
	}
	return model.Question{}, false
}

// AddQuestion appends a fresh question of the given type and selects it.
func (s *Session) AddQuestion(t model.QuestionType) (model.Question, error) {
	q, ok := questions.CreateDefault(t)
	if !ok {
		return model.Question{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	s.form.Questions = append(s.form.Questions, q)
	s.selected = q.ID
	s.dirty = true
	return q, nil
}

// QuestionPatch is a shallow merge: only non-nil fields are applied.
type QuestionPatch struct {
	Title            *string
	Description      *string
	Required         *bool
	Options          *[]string
	MinValue         *int
	MaxValue         *int
	Placeholder      *string
	AllowedFileTypes *[]string
	MaxFileSize      *int
}

func (s *Session) UpdateQuestion(id string, patch QuestionPatch) error {
	for i := range s.form.Questions {
		q := &s.form.Questions[i]
		if q.ID != id {
			continue
		}

		if patch.Title != nil {
			q.Title = *patch.Title
		}
		if patch.Description != nil {
			q.Description = *patch.Description
		}
		if patch.Required != nil {
			q.Required = *patch.Required
		}
		if patch.Options != nil {
			q.Options = *patch.Options
		}
		if patch.MinValue != nil {
			q.MinValue = *patch.MinValue
		}
		if patch.MaxValue != nil {
			q.MaxValue = *patch.MaxValue
		}
		if patch.Placeholder != nil {
			q.Placeholder = *patch.Placeholder
		}
		if patch.AllowedFileTypes != nil {
			q.AllowedFileTypes = *patch.AllowedFileTypes
		}
		if patch.MaxFileSize != nil {
			q.MaxFileSize = *patch.MaxFileSize
		}

		s.dirty = true
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
}

// DeleteQuestion removes a question by id; deleting the selected question
// clears the selection. Unknown ids are a no-op.
func (s *Session) DeleteQuestion(id string) {
	kept := s.form.Questions[:0]
	for _, q := range s.form.Questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(s.form.Questions) {
		return
	}

	s.form.Questions = kept
	if s.selected == id {
		s.selected = ""
	}
	s.dirty = true
}

// Reorder replaces the question sequence with the given permutation of ids.
func (s *Session) Reorder(ids []string) error {
	if len(ids) != len(s.form.Questions) {
		return ErrBadOrder
	}

	byID := make(map[string]model.Question, len(s.form.Questions))
	for _, q := range s.form.Questions {
		byID[q.ID] = q
	}

	reordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrBadOrder, id)
		}
		delete(byID, id)
		reordered = append(reordered, q)
	}

	s.form.Questions = reordered
	s.dirty = true
	return nil
}

func (s *Session) SetTitle(title string) {
	s.form.Title = title
	s.dirty = true
}

func (s *Session) SetDescription(description string) {
	s.form.Description = description
	s.dirty = true
}

// SetSlug filters the input down to lowercase [a-z0-9-] before storing it.
func (s *Session) SetSlug(raw string) {
	s.form.Slug = model.SanitizeSlug(raw)
	s.dirty = true
}

func (s *Session) SetTheme(theme string) {
	s.form.Theme = theme
	s.dirty = true
}

func (s *Session) SetThankYouMessage(message string) {
	s.form.ThankYouMessage = message
	s.dirty = true
}

// Snapshot is the whole editable surface of a form, as sent by the builder
// UI on save.
type Snapshot struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Slug            string           `json:"slug"`
	Theme           string           `json:"theme"`
	Questions       []model.Question `json:"questions"`
	ThankYouMessage string           `json:"thank_you_message"`
}

// ApplySnapshot replaces the session's editable state wholesale. Question
// ids must be unique and every question type must exist in the catalog.
func (s *Session) ApplySnapshot(snap Snapshot) error {
	seen := make(map[string]bool, len(snap.Questions))
	for _, q := range snap.Questions {
		if q.ID == "" || seen[q.ID] {
			return fmt.Errorf("%w: duplicate or empty id %q", ErrUnknownQuestion, q.ID)
		}
		seen[q.ID] = true
		if _, ok := questions.Lookup(q.Type); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownType, q.Type)
		}
	}

	s.SetTitle(snap.Title)
	s.SetDescription(snap.Description)
	s.SetSlug(snap.Slug)
	s.SetTheme(snap.Theme)
	s.SetThankYouMessage(snap.ThankYouMessage)
	s.form.Questions = snap.Questions
	if s.selected != "" && !seen[s.selected] {
		s.selected = ""
	}
	return nil
}

// Save persists the current snapshot without changing status. The dirty
// flag clears only on confirmed success.
func (s *Session) Save(ctx context.Context) error {
	snapshot := s.form
	if err := s.store.Update(ctx, &snapshot); err != nil {
		return err
	}
	s.form = snapshot
	s.dirty = false
	return nil
}

// TogglePublish persists the snapshot with the status flipped: published
// forms close, everything else publishes. Publishing an empty form is
// refused with ErrNoQuestions and leaves the state untouched.
func (s *Session) TogglePublish(ctx context.Context) (model.FormStatus, error) {
	next := model.StatusPublished
	if s.form.Status == model.StatusPublished {
		next = model.StatusClosed
	} else if len(s.form.Questions) == 0 {
		return s.form.Status, ErrNoQuestions
	}

	snapshot := s.form
	snapshot.Status = next
	if err := s.store.Update(ctx, &snapshot); err != nil {
		return s.form.Status, err
	}
	s.form = snapshot
	s.dirty = false
	return next, nil
}
