package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCodeStatus(t *testing.T) {
	tests := map[Code]int{
		CodeInvalidInput: http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeGone:         http.StatusGone,
		CodeRateLimited:  http.StatusTooManyRequests,
		CodeInternal:     http.StatusInternalServerError,
		Code("ODD"):      http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := code.Status(); got != want {
			t.Errorf("%s.Status() = %d, want %d", code, got, want)
		}
	}
}

func TestWrite(t *testing.T) {
	rr := httptest.NewRecorder()
	Write(rr, New(CodeInvalidInput, "amount must be positive").With("field", "amount"))

	if rr.Code != http.StatusBadRequest || rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("got %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Bad Request" || body["code"] != "INVALID_INPUT" || body["message"] != "amount must be positive" {
		t.Errorf("body = %v", body)
	}
	if d, _ := body["details"].(map[string]interface{}); d["field"] != "amount" {
		t.Errorf("details = %v", body["details"])
	}

	rr = httptest.NewRecorder()
	Write(rr, New(CodeNotFound, "gone fishing"))
	if _, ok := decodeMap(t, rr)["details"]; ok {
		t.Error("empty details should be omitted")
	}
}

func TestError(t *testing.T) {
	e := New(CodeGone, "link expired").With("status", "expired")
	if e.Error() != "GONE: link expired" || e.Details["status"] != "expired" {
		t.Errorf("unexpected error %v %v", e, e.Details)
	}
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return m
}
