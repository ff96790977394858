package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/neboloop/browserpilot/internal/types"
)

func TestParseJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"navigate","url":"https://example.com"}`))
	r.Header.Set("Content-Type", "application/json")

	var req types.BrowserActionRequest
	if err := Parse(r, &req); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Url != "https://example.com" {
		t.Errorf("Url = %q", req.Url)
	}
}

func TestParseTypeMismatchIsValidationError(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"click","x":"left"}`))

	var req types.BrowserActionRequest
	err := Parse(r, &req)
	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "x" {
		t.Errorf("Field = %q, want x", verr.Field)
	}
}

func TestParseQueryForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=7", nil)
	var req types.ListAIMessagesRequest
	if err := Parse(r, &req); err != nil {
		t.Fatal(err)
	}
	if req.Limit != 7 {
		t.Errorf("Limit = %d, want 7", req.Limit)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, &types.ValidationError{Field: "action", Message: "is required"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("validation error code = %d", w.Code)
	}
	var body types.ErrorResponse
	json.NewDecoder(w.Body).Decode(&body)
	if body.Field != "action" || body.Message != "action: is required" {
		t.Errorf("unexpected body %+v", body)
	}

	w = httptest.NewRecorder()
	Error(w, errors.New("net::ERR_NAME_NOT_RESOLVED"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("library error code = %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&body)
	if body.Message != "net::ERR_NAME_NOT_RESOLVED" {
		t.Errorf("message = %q", body.Message)
	}
}
