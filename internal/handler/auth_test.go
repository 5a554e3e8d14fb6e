package handler_test

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-auth-service/internal/auth"
	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/repository"
	"github.com/iliyamo/user-auth-service/internal/router"
	"github.com/iliyamo/user-auth-service/internal/token"
)

const (
	insertUserSQL = "INSERT INTO users (id, name, email, is_enabled, is_account_non_expired, is_account_non_locked, password_hash, image_url, source) VALUES (?,?,?,?,?,?,?,?,?)"
	insertRoleSQL = "INSERT INTO roles (id, user_id, role) VALUES (?,?,?)"
	selectUserSQL = "SELECT id, name, email, is_enabled, is_account_non_expired, is_account_non_locked, password_hash, image_url, source, created_at, updated_at FROM users WHERE email=? LIMIT 1"
)

var (
	errDuplicate = errors.New("Error 1062 (23000): Duplicate entry 'a@x.com' for key 'users.email'")
	errNoRows    = sql.ErrNoRows
)

func setupServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	users := repository.NewUserRepo(db)
	tokens := token.NewService("test-secret", 15*time.Minute, time.Hour,
		repository.NewTokenRepo(db), users)
	svc := auth.NewService(users, tokens, nil, 4)

	e := echo.New()
	e.Validator = handler.NewValidator()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc, nil), svc)
	return e, mock
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	e, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSignupEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("Created", func(t *testing.T) {
		t.Parallel()

		e, mock := setupServer(t)
		mock.ExpectBegin()
		mock.ExpectExec(insertUserSQL).
			WithArgs(sqlmock.AnyArg(), "A", "a@x.com", false, true, true, sqlmock.AnyArg(), nil, model.SourceSystem).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertRoleSQL).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), model.RoleUser).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		rec := doJSON(e, http.MethodPost, "/v1/auth/signup",
			`{"name":"A","email":"a@x.com","password":"p1","confirm_password":"p1"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"USER"`)
		assert.Contains(t, rec.Body.String(), `"email":"a@x.com"`)
		// The plaintext password and any hash must never appear in the response.
		assert.NotContains(t, rec.Body.String(), "p1")
		assert.NotContains(t, rec.Body.String(), "$2a$")
	})

	t.Run("Password mismatch is rejected without touching storage", func(t *testing.T) {
		t.Parallel()

		e, _ := setupServer(t)

		rec := doJSON(e, http.MethodPost, "/v1/auth/signup",
			`{"name":"A","email":"a@x.com","password":"p1","confirm_password":"p2"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "passwords must match")
	})

	t.Run("Invalid email fails validation", func(t *testing.T) {
		t.Parallel()

		e, _ := setupServer(t)

		rec := doJSON(e, http.MethodPost, "/v1/auth/signup",
			`{"name":"A","email":"not-an-email","password":"p1","confirm_password":"p1"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Duplicate email maps to 409", func(t *testing.T) {
		t.Parallel()

		e, mock := setupServer(t)
		mock.ExpectBegin()
		mock.ExpectExec(insertUserSQL).
			WithArgs(sqlmock.AnyArg(), "A", "a@x.com", false, true, true, sqlmock.AnyArg(), nil, model.SourceSystem).
			WillReturnError(errDuplicate)
		mock.ExpectRollback()

		rec := doJSON(e, http.MethodPost, "/v1/auth/signup",
			`{"name":"A","email":"a@x.com","password":"p1","confirm_password":"p1"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("Unknown user gets the generic credential error", func(t *testing.T) {
		t.Parallel()

		e, mock := setupServer(t)
		mock.ExpectQuery(selectUserSQL).WithArgs("a@x.com").WillReturnError(errNoRows)

		rec := doJSON(e, http.MethodPost, "/v1/auth/sign-in",
			`{"email":"a@x.com","password":"secret1"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})

	t.Run("Missing password fails validation", func(t *testing.T) {
		t.Parallel()

		e, _ := setupServer(t)

		rec := doJSON(e, http.MethodPost, "/v1/auth/sign-in", `{"email":"a@x.com"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("Garbage token gets the generic credential error", func(t *testing.T) {
		t.Parallel()

		e, _ := setupServer(t)

		rec := doJSON(e, http.MethodPost, "/v1/auth/refresh",
			`{"refresh_token":"not-a-token"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})

	t.Run("Empty body fails validation", func(t *testing.T) {
		t.Parallel()

		e, _ := setupServer(t)

		rec := doJSON(e, http.MethodPost, "/v1/auth/refresh", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
