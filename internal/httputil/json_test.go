package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadJSON(t *testing.T) {
	var out struct {
		Symbol string `json:"symbol"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"symbol":"BTCUSDT","extra":1}`))
	if err := ReadJSON(r, &out); err != nil {
		t.Fatalf("ReadJSON returned error: %v", err)
	}
	if out.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected symbol %s", out.Symbol)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := ReadJSON(r, &out); err == nil || err.Error() != "empty body" {
		t.Fatalf("expected empty body error, got %v", err)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	if err := ReadJSON(r, &out); err == nil || !strings.HasPrefix(err.Error(), "invalid json") {
		t.Fatalf("expected invalid json error, got %v", err)
	}
}

func TestReadJSONTrailingData(t *testing.T) {
	var out struct {
		Symbol string `json:"symbol"`
	}
	for _, body := range []string{`{"symbol":"BTCUSDT"}garbage`, `{"symbol":"BTCUSDT"}{"symbol":"ETHUSDT"}`} {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := ReadJSON(r, &out); err == nil || !strings.HasPrefix(err.Error(), "invalid json") {
			t.Fatalf("expected invalid json error for %q, got %v", body, err)
		}
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"symbol\":\"BTCUSDT\"}\n  "))
	if err := ReadJSON(r, &out); err != nil {
		t.Fatalf("trailing whitespace rejected: %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusTeapot, ErrorResponse{Error: "nope"})
	if rec.Code != http.StatusTeapot {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"error":"nope"}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
