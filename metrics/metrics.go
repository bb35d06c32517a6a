package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// once 保证指标只注册一次，重复注册会 panic。
	once sync.Once

	// DomainsProcessed 按分类结果统计已处理的域名数。
	//
	// labels：
	// - outcome：within_interval / outside_interval / no_date / lookup_failed
	DomainsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nrd_domains_processed_total",
			Help: "Domains processed, by classification outcome.",
		},
		[]string{"outcome"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nrd_cache_hits_total",
			Help: "Domains resolved from the registration date cache.",
		},
	)

	LookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nrd_lookup_duration_seconds",
			Help:    "Duration of live registration lookups.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func Init() {
	once.Do(func() {
		prometheus.MustRegister(DomainsProcessed, CacheHits, LookupDuration)
	})
}

// Serve 在 addr 上暴露 /metrics，ctx 结束时关闭。
func Serve(ctx context.Context, addr string) {
	Init()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Printf("[metrics] listening addr=%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[metrics] server_failed err=%v", err)
		}
	}()
}
