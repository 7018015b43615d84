package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHandlerExposesMetrics(t *testing.T) {
	OrdersTotal.WithLabelValues("Buy", "Market").Inc()
	AlertsTotal.WithLabelValues("accepted").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range mfs {
		found[mf.GetName()] = true
	}
	for _, name := range []string{"orders_total", "alerts_total"} {
		if !found[name] {
			t.Fatalf("%s metric not found", name)
		}
	}

	srv := httptest.NewServer(Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `orders_total{order_type="Market",side="Buy"}`) {
		t.Fatalf("orders_total sample missing from scrape output")
	}
}
