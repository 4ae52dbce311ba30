package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteJSON(w, http.StatusOK, map[string]string{"status": "confirmed"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "confirmed", body["status"])
}

func TestWriteErrorMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorMessage(w, http.StatusBadRequest, "date is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "date is required", body["error"])
}

func TestStatusHelpers(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteCreated(w, map[string]int64{"id": 7}))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteSuccess(w, map[string]int64{"id": 7}))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no content", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteNoContent(w)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Zero(t, w.Body.Len())
	})

	t.Run("bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteBadRequest(w, "nope")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
