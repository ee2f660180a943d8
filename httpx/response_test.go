package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"amount": "must_be_positive"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "validation_failed" || body.Details == nil {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestJSONNilPayload(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, nil)
	if w.Body.String() != "null" {
		t.Fatalf("expected null body got %q", w.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Month int `json:"month"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":4}`))
	if err := DecodeJSON(r, &dst); err != nil || dst.Month != 4 {
		t.Fatalf("decode: %v %+v", err, dst)
	}

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(empty, &dst); err != nil {
		t.Fatalf("empty body should be accepted: %v", err)
	}

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":`))
	if err := DecodeJSON(bad, &dst); err == nil {
		t.Fatalf("expected error for truncated body")
	}
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	Attachment(w, "text/csv", "students.csv", []byte("a,b\n"))
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="students.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if w.Body.String() != "a,b\n" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestJSONWritesMoneyAsNumber(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]decimal.Decimal{"totalDue": decimal.RequireFromString("4500.50")})
	if got := strings.TrimSpace(w.Body.String()); got != `{"totalDue":4500.5}` {
		t.Fatalf("unexpected body %s", got)
	}
}
