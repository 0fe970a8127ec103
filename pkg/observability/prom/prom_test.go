package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/stackflex/pkg/observability"
)

func TestHooksRecord(t *testing.T) {
	ctx := context.Background()
	h := New(prometheus.NewRegistry())

	h.OnLayoutStart(ctx, "flexbox", 12)
	h.OnLayoutComplete(ctx, "flexbox", 12, 3*time.Millisecond, nil)
	h.OnLayoutComplete(ctx, "force", 4, time.Millisecond, errors.New("boom"))
	h.OnCacheHit(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheSet(ctx, "layout", 100)
	h.OnResponse(ctx, "POST", "/v1/layout", 200, time.Millisecond)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"flexbox ok", h.LayoutsTotal.WithLabelValues("flexbox", "ok"), 1},
		{"force error", h.LayoutsTotal.WithLabelValues("force", "error"), 1},
		{"cache hit", h.CacheEvents.WithLabelValues("layout", "hit"), 1},
		{"cache miss", h.CacheEvents.WithLabelValues("layout", "miss"), 1},
		{"cache bytes", h.CacheBytes, 100},
		{"http", h.HTTPRequests.WithLabelValues("POST", "/v1/layout", "200"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstall(t *testing.T) {
	t.Cleanup(observability.Reset)
	h := New(prometheus.NewRegistry())
	h.Install()
	if observability.Layout() != h || observability.Cache() != h || observability.HTTP() != h {
		t.Error("Install did not register every hook")
	}
}
