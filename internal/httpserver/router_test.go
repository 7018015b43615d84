package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alert-bridge/internal/broker"
	"alert-bridge/internal/health"
	"alert-bridge/internal/orders"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func newBridge(t *testing.T, exchangeURL, tokenHash string) *httptest.Server {
	t.Helper()
	adapter := broker.NewBybit(
		broker.Credentials{APIKey: "K", APISecret: "S", BaseURL: exchangeURL},
		broker.WithClock(broker.ClockFunc(func() int64 { return 1700000000000 })),
		broker.WithTimeout(2*time.Second),
	)
	router := NewRouter(RouterDeps{
		OrderHandler:     orders.NewHandler(orders.NewService(adapter, zerolog.Nop())),
		HealthHandler:    health.NewHandler(adapter, time.Now(), ":0", exchangeURL, true),
		WebhookTokenHash: tokenHash,
		Logger:           zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestWebhookEndToEnd(t *testing.T) {
	var gotBody string
	exchange := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"orderId":"abc"},"retExtInfo":{},"time":1700000000001}`))
	}))
	defer exchange.Close()

	bridge := newBridge(t, exchange.URL, "")
	resp, err := http.Post(bridge.URL+"/webhook", "application/json", strings.NewReader(`{"symbol":"BTC/USD","action":"buy","quantity":0.01,"orderType":"market"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	expected := `{"category":"spot","symbol":"BTCUSDT","side":"Buy","orderType":"Market","qty":"0.01","timeInForce":"GTC"}`
	if gotBody != expected {
		t.Fatalf("exchange received %s", gotBody)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["success"] != true {
		t.Fatalf("unexpected body %v", out)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestWebhookTokenRequired(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	exchange := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{}}`))
	}))
	defer exchange.Close()
	bridge := newBridge(t, exchange.URL, string(hash))
	const alert = `{"symbol":"ETHUSDT","action":"sell","quantity":1}`

	cases := []struct {
		name   string
		url    string
		header string
		status int
	}{
		{"missing", "/webhook", "", http.StatusUnauthorized},
		{"wrong", "/webhook", "nope", http.StatusUnauthorized},
		{"header", "/webhook", "s3cret", http.StatusOK},
		{"query", "/webhook?token=s3cret", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, bridge.URL+tc.url, strings.NewReader(alert))
			if tc.header != "" {
				req.Header.Set("X-Webhook-Token", tc.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	exchange := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"timeSecond":"1700000000"}}`))
	}))
	defer exchange.Close()
	bridge := newBridge(t, exchange.URL, "")

	for _, path := range []string{"/health", "/test-connection", "/metrics", "/health/full"} {
		resp, err := http.Get(bridge.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", path, resp.StatusCode)
		}
	}
}
