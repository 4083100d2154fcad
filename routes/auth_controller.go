package routes

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/oauth"
	"github.com/go-chi/render"
	sqlite3 "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/openformhq/openform/app"
	"github.com/openformhq/openform/httpx"
	"github.com/openformhq/openform/log"
	"github.com/openformhq/openform/otp"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Signup(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := signupRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "signup.parse_body")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if !strings.Contains(req.Email, "@") {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "signup.email", "invalid email address")
			return
		}
		if len(req.Password) < 8 {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "signup.password", "password must be at least 8 characters")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "signup.hash", err)
			return
		}

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO user (email, password_hash) VALUES (?, ?)`,
			req.Email,
			string(hash),
		)
		if err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
				httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "signup.duplicate", "email already registered")
				return
			}
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		}

		if err = issueCode(app, r, req.Email); err != nil {
			httpx.LogInternalError(w, "signup.issue_code", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"email": req.Email,
		})
	}
}

func issueCode(app app.App, r *http.Request, email string) error {
	code, err := otp.Generate()
	if err != nil {
		return err
	}

	_, err = app.ExecContext(r.Context(), `
		INSERT OR REPLACE INTO otp_code (email, code, expires_at)
		VALUES (?, ?, ?)`,
		email,
		code,
		time.Now().Add(otp.Validity),
	)
	if err != nil {
		return err
	}

	return app.Codes.Send(email, code)
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func VerifyEmail(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := verifyRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "verify.parse_body")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))

		var code string
		var expiresAt time.Time
		err = app.QueryRowContext(r.Context(), `
			SELECT code, expires_at FROM otp_code WHERE email = ?`,
			req.Email,
		).Scan(&code, &expiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "verify.no_code", "invalid or expired code")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_code", err)
			return
		}

		if subtle.ConstantTimeCompare([]byte(code), []byte(req.Code)) != 1 || time.Now().After(expiresAt) {
			httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "verify.mismatch", "invalid or expired code")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(r.Context(), `UPDATE user SET verified = 1 WHERE email = ?`, req.Email)
		if err != nil {
			httpx.LogInternalError(w, "db.verify_user", err)
			return
		}
		_, err = tx.ExecContext(r.Context(), `DELETE FROM otp_code WHERE email = ?`, req.Email)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_code", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.verify_user.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type resendRequest struct {
	Email string `json:"email"`
}

// ResendCode re-issues a verification code. Always answers 204 so the
// endpoint does not reveal which addresses have accounts.
func ResendCode(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := resendRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "resend.parse_body")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))

		var verified bool
		err = app.QueryRowContext(r.Context(), `
			SELECT verified FROM user WHERE email = ?`,
			req.Email,
		).Scan(&verified)
		if err != nil || verified {
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				log.Errorf("db.get_user: %s", err)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err = issueCode(app, r, req.Email); err != nil {
			httpx.LogInternalError(w, "resend.issue_code", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := regexp.MustCompile(`(?i)^refresh\s+(.*)`).FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

// Logout drops every stored token for the signed-in account.
func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := r.Context().Value(oauth.CredentialContext).(string)
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "logout.credential")
			return
		}

		_, err := app.ExecContext(r.Context(), `DELETE FROM token WHERE username = ?`, email)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_tokens", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
