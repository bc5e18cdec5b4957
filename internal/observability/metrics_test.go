package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"daylog/internal/core"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(validationRejections.WithLabelValues(string(core.KindDailyBudgetExceeded)))
	RecordValidationRejection(core.KindDailyBudgetExceeded)
	after := testutil.ToFloat64(validationRejections.WithLabelValues(string(core.KindDailyBudgetExceeded)))
	if after-before != 1 {
		t.Fatalf("validation rejections delta = %v, want 1", after-before)
	}

	addedBefore := testutil.ToFloat64(activitiesAdded)
	RecordActivityAdded()
	RecordActivityAdded()
	if got := testutil.ToFloat64(activitiesAdded) - addedBefore; got != 2 {
		t.Fatalf("added delta = %v, want 2", got)
	}
}

func TestRecordExportedMovesWatermark(t *testing.T) {
	at := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	RecordExported("activity.added", at)
	if got := testutil.ToFloat64(lastExportGauge); got != float64(at.Unix()) {
		t.Fatalf("watermark = %v, want %v", got, float64(at.Unix()))
	}

	RecordExported("activity.added", time.Time{})
	if got := testutil.ToFloat64(lastExportGauge); got != float64(at.Unix()) {
		t.Fatalf("zero time moved the watermark to %v", got)
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.CollectAndCount(httpRequests)
	ObserveHTTPRequest("TRACE", 418, 5*time.Millisecond)
	if got := testutil.CollectAndCount(httpRequests); got != before+1 {
		t.Fatalf("series = %d, want %d", got, before+1)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 422: "4xx", 503: "5xx"}
	for status, want := range tests {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", status, got, want)
		}
	}
}
