package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestObserveExternal(t *testing.T) {
	ObserveExternal("test-target", time.Now(), errors.New("boom"))

	out := scrape(t)
	want := `warikan_external_calls_total{outcome="error",target="test-target"} 1`
	if !strings.Contains(out, want) {
		t.Fatalf("metrics output missing %q:\n%s", want, out)
	}
	if !strings.Contains(out, `warikan_external_call_duration_seconds_count{target="test-target"} 1`) {
		t.Fatalf("metrics output missing latency histogram:\n%s", out)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	Intents.WithLabelValues("help").Inc()

	if out := scrape(t); !strings.Contains(out, "warikan_bot_intents_total") {
		t.Fatalf("metrics output missing intents counter:\n%s", out)
	}
}

func TestOutcome(t *testing.T) {
	if Outcome(nil) != OutcomeSuccess || Outcome(errors.New("x")) != OutcomeError {
		t.Fatal("unexpected outcome mapping")
	}
}
