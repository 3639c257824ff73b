package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/anime/:id", "200"))

	RecordAPIRequest("GET", "/anime/:id", "200", 12*time.Millisecond)
	RecordAPIRequest("GET", "/anime/:id", "200", 3*time.Millisecond)

	got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/anime/:id", "200"))
	if got-before != 2 {
		t.Fatalf("expected 2 new requests, got %v", got-before)
	}
}

func TestRecordMutation(t *testing.T) {
	tests := []struct {
		entity string
		action string
	}{
		{"anime", "created"},
		{"anime", "deleted"},
		{"category", "patched"},
	}

	for _, tt := range tests {
		t.Run(tt.entity+"."+tt.action, func(t *testing.T) {
			c := CatalogMutations.WithLabelValues(tt.entity, tt.action)
			before := testutil.ToFloat64(c)
			RecordMutation(tt.entity, tt.action)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Fatalf("counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestTrackActiveRequestBalances(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Fatalf("gauge = %v after inc", got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Fatalf("gauge = %v after dec, want %v", got, before)
	}
}

func TestSetSubscribers(t *testing.T) {
	SetSubscribers("tcp", 3)
	if got := testutil.ToFloat64(EventSubscribers.WithLabelValues("tcp")); got != 3 {
		t.Fatalf("tcp subscribers = %v", got)
	}
}
