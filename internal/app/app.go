package app

import (
	"context"
	"io"
	"log"
	"time"
)

// App 组装一次完整的批量检查。
type App struct {
	Checker    Classifier
	Out        io.Writer
	OutputFile io.Writer
	Verbosity  int
	Delay      time.Duration
	Concurrent bool
	PoolSize   int

	// Progress 为 nil 时不显示进度行。
	Progress io.Writer

	Notifier   *NotifierService
	OutputPath string

	Now func() time.Time
}

func (a *App) Run(ctx context.Context, domains []string) (Snapshot, error) {
	if a.Checker == nil || a.Out == nil {
		return Snapshot{}, ErrMissingDependencies
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	counters := NewCounters(len(domains), now())
	var reporter Reporter = NoopReporter{}
	if a.Progress != nil {
		reporter = NewTerminalReporter(a.Progress)
	}
	console := NewConsole(a.Out, a.OutputFile, reporter)

	worker := &DomainWorker{
		Checker:   a.Checker,
		Counters:  counters,
		Console:   console,
		Verbosity: a.Verbosity,
		Delay:     a.Delay,
	}
	engine := &BatchEngine{Worker: worker, Concurrent: a.Concurrent, PoolSize: a.PoolSize}

	runErr := engine.Run(ctx, domains)
	snap := counters.Snapshot()
	console.Finish(snap)
	log.Printf("[nrd] run_finished processed=%d/%d newly=%d old=%d cache_hits=%d errors=%d elapsed=%s",
		snap.Processed, snap.Total, snap.Newly, snap.Old, snap.CacheHits, snap.Errors, snap.Elapsed.Round(time.Second))
	if runErr != nil {
		return snap, runErr
	}

	if a.Notifier != nil {
		// 通知使用独立 context，避免 Ctrl+C 后汇总发不出去
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.Notifier.Notify(notifyCtx, snap, counters.NewlyRegistered()); err != nil {
			log.Printf("[notify] send_failed err=%v", err)
		}
		a.Notifier.NotifyFile(notifyCtx, a.OutputPath)
	}
	return snap, nil
}
