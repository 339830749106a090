package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestUserHandler_RegisterUser_EmptyBodyRejected(t *testing.T) {
	// The usecase must never be reached, so a nil one suffices.
	h := NewUserHandler(nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newTestContext(req)

	err := h.RegisterUser(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestUserHandler_Login_EmptyBodyRejected(t *testing.T) {
	h := NewUserHandler(nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newTestContext(req)

	err := h.Login(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestProfileHandler_UpsertProfile_EmptyBodyRejected(t *testing.T) {
	h := NewProfileHandler(nil, discardLogger())

	req := httptest.NewRequest(http.MethodPut, "/user/profile", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newTestContext(req)

	err := h.UpsertProfile(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}
