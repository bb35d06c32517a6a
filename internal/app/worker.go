package app

import (
	"context"
	"fmt"
	"time"

	"DomainNRD/domain"
)

type Classifier interface {
	Classify(ctx context.Context, name string) domain.Result
}

// DomainWorker 处理单个域名：分类、计数、输出、等待。
type DomainWorker struct {
	Checker   Classifier
	Counters  *Counters
	Console   *Console
	Verbosity int

	// Delay 仅在实际发起查询后生效，缓存命中不等待。
	Delay time.Duration
}

func (w *DomainWorker) Process(ctx context.Context, name string) domain.Kind {
	res := w.Checker.Classify(ctx, name)
	snap := w.Counters.Record(res)

	if err := w.Console.Emit(FormatResult(res, w.Verbosity), snap); err != nil {
		w.Console.Logf("[nrd] output_failed domain=%s err=%v", name, err)
	}
	if res.CacheErr != nil {
		w.Console.Logf("[nrd] cache_append_failed domain=%s err=%v", name, res.CacheErr)
	}

	if !res.CacheHit && w.Delay > 0 {
		timer := time.NewTimer(w.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
	return res.Kind
}

// FormatResult 根据 verbosity 生成输出行，返回空串表示不输出。
//
//	0: 只输出新注册域名
//	1: 增加查询失败与无日期
//	2: 增加老域名
//	3: 显示注册日期，缓存命中时追加 (CACHE)
func FormatResult(res domain.Result, verbosity int) string {
	switch res.Kind {
	case domain.WithinInterval:
		return formatDated(res, verbosity, "NEWLY REGISTERED DOMAIN")
	case domain.OutsideInterval:
		if verbosity < 2 {
			return ""
		}
		return formatDated(res, verbosity, "OLD")
	case domain.LookupFailed:
		if verbosity < 1 {
			return ""
		}
		return fmt.Sprintf("%s EXCEPTION %s", res.Domain, res.Message)
	case domain.NoDate:
		if verbosity < 1 {
			return ""
		}
		return fmt.Sprintf("%s ERROR", res.Domain)
	}
	return ""
}

func formatDated(res domain.Result, verbosity int, label string) string {
	if verbosity < 3 {
		return fmt.Sprintf("%s (%d days) %s", res.Domain, res.Days, label)
	}
	line := fmt.Sprintf("%s (%s) %s", res.Domain, res.Date.Format(domain.DateLayout), label)
	if res.CacheHit {
		line += " (CACHE)"
	}
	return line
}
