package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// newTestContext builds an authenticated Echo context around the given
// request, mirroring what the auth middleware sets.
func newTestContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", uuid.New())

	return c, rec
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOrderHandler_CreateOrder_EmptyBodyRejected(t *testing.T) {
	// The usecase must never be reached, so a nil one suffices.
	h := NewOrderHandler(nil, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newTestContext(req)

	err := h.CreateOrder(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestOrderHandler_UpdateOrder_EmptyBodyRejected(t *testing.T) {
	h := NewOrderHandler(nil, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPut, "/orders/"+uuid.NewString(), nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newTestContext(req)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.UpdateOrder(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestOrderHandler_GetOrder_InvalidID(t *testing.T) {
	h := NewOrderHandler(nil, nil, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	c, _ := newTestContext(req)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetOrder(c)

	httpErr := &echo.HTTPError{}
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
