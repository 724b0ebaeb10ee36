package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	rec := NewPrometheus(WithRegistry(registry))

	rec.ObserveRequest("GET", "/t/{id}", 200, 20*time.Millisecond)
	rec.ObserveRequest("GET", "/t/{id}", 200, 10*time.Millisecond)
	rec.IncPromptGenerated("ok")
	rec.IncTemplateChange("add")
	rec.IncPreviewMessage()
	rec.SetPreviewConnections(1)
	rec.SetPreviewConnections(1)
	rec.SetPreviewConnections(-1)

	resp := httptest.NewRecorder()
	rec.Handler().ServeHTTP(resp, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(resp.Body)
	for _, line := range []string{
		`promptgen_http_requests_total{method="GET",route="/t/{id}",status="200"} 2`,
		`promptgen_prompts_generated_total{status="ok"} 1`,
		`promptgen_custom_templates_total{action="add"} 1`,
		`promptgen_preview_messages_total 1`,
		`promptgen_preview_connections 1`,
	} {
		if !strings.Contains(string(body), line) {
			t.Fatalf("expected exposition to include %q:\n%s", line, body)
		}
	}
}

func TestNoopSatisfiesRecorder(t *testing.T) {
	var rec Recorder = NewNoop()
	rec.ObserveRequest("GET", "/", 200, time.Millisecond)
	rec.IncPromptGenerated("error")
}
