package observability

import (
	"testing"
	"time"

	"github.com/danmuck/serialforce/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("sfctl", "GET", "/health", 200, 12*time.Millisecond)
	before := testutil.ToFloat64(envelopes.WithLabelValues("cli", "verify", ResultInvalid))
	RecordEnvelope("cli", "verify", ResultInvalid, 40)
	after := testutil.ToFloat64(envelopes.WithLabelValues("cli", "verify", ResultInvalid))
	if after != before+1 {
		t.Fatalf("envelope counter: before=%v after=%v", before, after)
	}
}

func TestEnvelopeResult(t *testing.T) {
	testlog.Start(t)
	if EnvelopeResult(1, 1) != ResultInvalid || EnvelopeResult(0, 2) != ResultUnknown || EnvelopeResult(0, 0) != ResultOK {
		t.Fatalf("unexpected envelope result labels")
	}
}
