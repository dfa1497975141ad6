package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "neoquiz/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"internal error hides message", dErrors.New(dErrors.CodeInternal, "db failed"), http.StatusInternalServerError, "internal_error", ""},
		{"uncoded error is internal", assert.AnError, http.StatusInternalServerError, "internal_error", ""},
		{"conflict keeps message", dErrors.New(dErrors.CodeConflict, "Email already registered"), http.StatusConflict, "conflict", "Email already registered"},
		{"validation is a bad request", dErrors.New(dErrors.CodeValidation, "Please enter a valid age"), http.StatusBadRequest, "validation_error", "Please enter a valid age"},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password"), http.StatusUnauthorized, "unauthorized", "Invalid email or password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["error"])
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}
