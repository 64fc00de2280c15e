package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tokenops/authcore"
)

type fakeSource struct {
	snapshot authcore.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() authcore.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                      { return f.dropped }

func TestRenderCounters(t *testing.T) {
	source := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters: map[authcore.MetricID]uint64{
				authcore.MetricLoginSuccess: 3,
				authcore.MetricLoginFailure: 1,
			},
			Histograms: map[authcore.MetricID][]uint64{},
		},
	}

	out := NewPrometheusExporterFromSource(source).Render()

	if !strings.Contains(out, "authcore_login_success_total 3") {
		t.Fatalf("missing login success counter in output:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE authcore_login_failure_total counter") {
		t.Fatalf("missing TYPE line in output:\n%s", out)
	}
}

func TestRenderHistogramCumulative(t *testing.T) {
	source := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters: map[authcore.MetricID]uint64{},
			Histograms: map[authcore.MetricID][]uint64{
				authcore.MetricValidateLatency: {2, 1, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	out := NewPrometheusExporterFromSource(source).Render()

	if !strings.Contains(out, `authcore_validate_latency_seconds_bucket{le="0.005"} 2`) {
		t.Fatalf("first bucket not rendered:\n%s", out)
	}
	if !strings.Contains(out, `authcore_validate_latency_seconds_bucket{le="+Inf"} 3`) {
		t.Fatalf("+Inf bucket must be cumulative:\n%s", out)
	}
	if !strings.Contains(out, "authcore_validate_latency_seconds_count 3") {
		t.Fatalf("count not rendered:\n%s", out)
	}
}

func TestRenderAuditDropped(t *testing.T) {
	source := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters:   map[authcore.MetricID]uint64{},
			Histograms: map[authcore.MetricID][]uint64{},
		},
		dropped: 7,
	}

	out := NewPrometheusExporterFromSource(source).Render()
	if !strings.Contains(out, "authcore_audit_dropped_total 7") {
		t.Fatalf("audit dropped counter not rendered:\n%s", out)
	}
}

func TestHandlerContentType(t *testing.T) {
	source := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters:   map[authcore.MetricID]uint64{authcore.MetricLoginSuccess: 1},
			Histograms: map[authcore.MetricID][]uint64{},
		},
	}

	rec := httptest.NewRecorder()
	NewPrometheusExporterFromSource(source).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	ct := rec.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q, want text/plain exposition", ct)
	}
}

func TestRenderEmptySource(t *testing.T) {
	source := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters:   map[authcore.MetricID]uint64{},
			Histograms: map[authcore.MetricID][]uint64{},
		},
	}

	if out := NewPrometheusExporterFromSource(source).Render(); out != "" {
		t.Fatalf("empty snapshot should render empty output, got:\n%s", out)
	}
}
