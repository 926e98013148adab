package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntegrity(t *testing.T) {
	err := NewIntegrity("PO_LINE_INTEGRITY", "line is missing its supplier").
		WithDetail("lineNo", 3)

	assert.Equal(t, "PO_LINE_INTEGRITY", err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, 3, err.Details["lineNo"])
}

func TestNewInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("item-42", 100, 37.5)

	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, "item-42", err.Details["item_id"])
	assert.Equal(t, 100.0, err.Details["requested"])
	assert.Equal(t, 37.5, err.Details["available"])
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	inner := NewNotFound("item", "abc")
	wrapped := fmt.Errorf("loading order: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(NewValidation("bad")))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(NewConflict("busy")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}
