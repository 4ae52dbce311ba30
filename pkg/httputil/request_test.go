package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"table 4","count":2}`))
		var got payload
		require.NoError(t, ParseJSON(r, &got))
		assert.Equal(t, "table 4", got.Name)
		assert.Equal(t, 2, got.Count)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
		var got payload
		err := ParseJSON(r, &got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON")
	})
}

func TestParseJSONOrError_WritesBadRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`not json`))
	w := httptest.NewRecorder()

	var got map[string]interface{}
	ok := ParseJSONOrError(w, r, &got)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")
}

func TestParsePathInt64(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		want    int64
		wantErr string
	}{
		{"valid", map[string]string{"id": "42"}, 42, ""},
		{"missing", map[string]string{}, 0, "missing path parameter: id"},
		{"not a number", map[string]string{"id": "abc"}, 0, "invalid integer for id: abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.SetURLVars(httptest.NewRequest("GET", "/", nil), tt.vars)
			got, err := ParsePathInt64(r, "id")
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePathInt64OrError_WritesBadRequest(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest("GET", "/", nil), map[string]string{"id": "abc"})
	w := httptest.NewRecorder()

	_, ok := ParsePathInt64OrError(w, r, "id")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
