package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	permkit "github.com/permkit/permkit"
)

type fakeSource struct {
	snapshot permkit.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() permkit.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                     { return f.dropped }

func TestRenderExpositionFormat(t *testing.T) {
	src := &fakeSource{
		snapshot: permkit.MetricsSnapshot{
			Counters: map[permkit.MetricID]uint64{
				permkit.MetricMaskComputed:   7,
				permkit.MetricResolutionMiss: 2,
			},
		},
		dropped: 1,
	}

	out := NewPrometheusExporterFromSource(src).Render()

	for _, want := range []string{
		"# TYPE permkit_mask_computed_total counter",
		"permkit_mask_computed_total 7",
		"permkit_resolution_miss_total 2",
		"permkit_audit_dropped_total 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderEmptyWhenNoData(t *testing.T) {
	src := &fakeSource{snapshot: permkit.MetricsSnapshot{Counters: map[permkit.MetricID]uint64{}}}
	if out := NewPrometheusExporterFromSource(src).Render(); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}

	var nilExp *PrometheusExporter
	if out := nilExp.Render(); out != "" {
		t.Fatalf("expected empty output from nil exporter, got %q", out)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	src := &fakeSource{
		snapshot: permkit.MetricsSnapshot{
			Counters: map[permkit.MetricID]uint64{permkit.MetricRegister: 1},
		},
	}
	exp := NewPrometheusExporterFromSource(src)

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "permkit_register_total 1") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}
