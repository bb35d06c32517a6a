package app

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"DomainNRD/domain"
	"DomainNRD/metrics"
)

func TestFormatProgress(t *testing.T) {
	s := Snapshot{
		Total: 10, Processed: 4, Newly: 1, CacheHits: 2, Errors: 1,
		Start:   time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		Elapsed: 2*time.Hour + 5*time.Minute + 30*time.Second,
	}
	want := "Processed: 4/10 | New: 1 | Cache: 2 | Errors: 1 | Started: 2026-10-19 08:00:00 | Elapsed: 02:05"
	if got := FormatProgress(s); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTerminalReporterPadsShorterLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalReporter(&buf)

	long := Snapshot{Total: 1000, Processed: 999, Start: fixedNow}
	short := Snapshot{Total: 1, Processed: 1, Start: fixedNow}
	r.Update(long)
	first := buf.Len()
	buf.Reset()

	r.Update(short)
	if buf.Len() != first {
		t.Fatalf("shorter line must be padded to previous width: %d vs %d", buf.Len(), first)
	}
	if !strings.HasPrefix(buf.String(), "\r") {
		t.Fatalf("progress line must start with carriage return: %q", buf.String())
	}
}

func TestConsoleEmitErasesAndRedraws(t *testing.T) {
	var buf, file bytes.Buffer
	console := NewConsole(&buf, &file, NewTerminalReporter(&buf))
	snap := Snapshot{Total: 2, Processed: 1, Start: fixedNow}
	progress := FormatProgress(snap)

	if err := console.Emit("", snap); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if err := console.Emit("a.example (1 days) NEWLY REGISTERED DOMAIN", snap); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	blank := "\r" + strings.Repeat(" ", len(progress)) + "\r"
	want := "\r" + progress + blank + "a.example (1 days) NEWLY REGISTERED DOMAIN\n" + "\r" + progress
	if buf.String() != want {
		t.Fatalf("unexpected console stream:\n got %q\nwant %q", buf.String(), want)
	}
	if file.String() != "a.example (1 days) NEWLY REGISTERED DOMAIN\n" {
		t.Fatalf("unexpected file contents %q", file.String())
	}
}

func TestConsoleConcurrentLinesStayWhole(t *testing.T) {
	var out, file bytes.Buffer
	console := NewConsole(&out, &file, NewTerminalReporter(&bytes.Buffer{}))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = console.Emit("x.example (1 days) NEWLY REGISTERED DOMAIN", Snapshot{})
		}()
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimSuffix(file.String(), "\n"), "\n") {
		if line != "x.example (1 days) NEWLY REGISTERED DOMAIN" {
			t.Fatalf("interleaved line %q", line)
		}
	}
}

func TestCountersConcurrentRecordIsExact(t *testing.T) {
	c := NewCounters(400, fixedNow)
	kinds := []domain.Kind{domain.WithinInterval, domain.OutsideInterval, domain.NoDate, domain.LookupFailed}

	var wg sync.WaitGroup
	for i := 0; i < 400; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Record(domain.Result{Domain: "d", Kind: kinds[i%4], CacheHit: i%2 == 0})
		}(i)
	}
	wg.Wait()

	s := c.Snapshot()
	if s.Processed != 400 || s.Newly != 100 || s.Old != 100 || s.Errors != 200 || s.CacheHits != 200 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if len(c.NewlyRegistered()) != 100 {
		t.Fatalf("unexpected newly list length %d", len(c.NewlyRegistered()))
	}
}

func TestCountersMirrorMetrics(t *testing.T) {
	hitsBefore := testutil.ToFloat64(metrics.CacheHits)
	newBefore := testutil.ToFloat64(metrics.DomainsProcessed.WithLabelValues("within_interval"))

	c := NewCounters(1, fixedNow)
	c.Record(domain.Result{Domain: "a.example", Kind: domain.WithinInterval, CacheHit: true})

	if got := testutil.ToFloat64(metrics.CacheHits) - hitsBefore; got != 1 {
		t.Fatalf("cache hits metric delta: got %v", got)
	}
	if got := testutil.ToFloat64(metrics.DomainsProcessed.WithLabelValues("within_interval")) - newBefore; got != 1 {
		t.Fatalf("outcome metric delta: got %v", got)
	}
}

func TestCacheAppendFailureKeepsStreamClean(t *testing.T) {
	var stream bytes.Buffer
	log.SetOutput(&stream)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	})

	// 父目录不存在，每次追加都会失败
	cache, err := domain.LoadCache(filepath.Join(t.TempDir(), "missing", "cache.txt"))
	if err != nil {
		t.Fatalf("LoadCache returned error: %v", err)
	}
	lookup := newFakeLookup()
	lookup.dates["a.example"] = []time.Time{daysAgo(10)}
	lookup.dates["b.example"] = []time.Time{daysAgo(400)}

	application := &App{
		Checker:   newChecker(lookup, cache, 30),
		Out:       &stream,
		Progress:  &stream,
		Verbosity: 2,
	}
	snap, err := application.Run(context.Background(), []string{"a.example", "b.example"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if snap.Newly != 1 || snap.Old != 1 {
		t.Fatalf("append failure must not change outcomes: %+v", snap)
	}

	got := stream.String()
	if n := strings.Count(got, "[nrd] cache_append_failed"); n != 2 {
		t.Fatalf("expected 2 append failures logged, got %d in %q", n, got)
	}
	if n := strings.Count(got, "\r[nrd] cache_append_failed"); n != 2 {
		t.Fatalf("log lines must start on an erased line: %q", got)
	}
	if strings.Contains(got, "00:00[nrd]") {
		t.Fatalf("log glued onto progress line: %q", got)
	}
	if !strings.Contains(got, "\rb.example (400 days) OLD\n") {
		t.Fatalf("result line not written on an erased line: %q", got)
	}
}
