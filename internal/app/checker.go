package app

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"DomainNRD/domain"
	"DomainNRD/metrics"
	"DomainNRD/tools"
)

// RegistrationChecker 判断域名是否在阈值天数内注册。
// 缓存命中时不发起外部查询；查询到日期后追加写入缓存。
type RegistrationChecker struct {
	Lookup        LookupClient
	Cache         domain.CacheStore
	ThresholdDays int
	QueryTimeout  time.Duration
	Now           func() time.Time

	// Limiter 限制所有 worker 的实时查询速率，缓存命中不消耗配额。
	Limiter *rate.Limiter
}

func (c *RegistrationChecker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *RegistrationChecker) Classify(ctx context.Context, name string) domain.Result {
	res := domain.Result{Domain: name}

	// A) 查 cache
	if c.Cache != nil {
		if date, ok := c.Cache.Lookup(name); ok {
			res.CacheHit = true
			return c.compare(res, date)
		}
	}

	if c.Lookup == nil {
		res.Kind = domain.LookupFailed
		res.Message = ErrMissingDependencies.Error()
		return res
	}

	// B) 限速
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			res.Kind = domain.LookupFailed
			res.Message = err.Error()
			return res
		}
	}

	// C) 查询 RDAP / WHOIS
	lookupCtx := ctx
	cancel := func() {}
	if c.QueryTimeout > 0 {
		lookupCtx, cancel = context.WithTimeout(ctx, c.QueryTimeout)
	}
	start := time.Now()
	dates, err := c.Lookup.Lookup(lookupCtx, name)
	cancel()
	metrics.LookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		res.Kind = domain.LookupFailed
		res.Message = err.Error()
		return res
	}

	date, ok := tools.Earliest(dates)
	if !ok {
		res.Kind = domain.NoDate
		return res
	}
	date = tools.TruncateDay(date)

	// D) 写入 cache
	if c.Cache != nil {
		res.CacheErr = c.Cache.Append(name, date)
	}

	return c.compare(res, date)
}

// compare 以 UTC 日历天比较，阈值边界包含在内；未来日期的天数为负，归为 WithinInterval。
func (c *RegistrationChecker) compare(res domain.Result, date time.Time) domain.Result {
	now := c.now()
	cutoff := tools.TruncateDay(now).AddDate(0, 0, -c.ThresholdDays)

	res.Date = tools.TruncateDay(date)
	res.HasDate = true
	res.Days = tools.DaysSince(res.Date, now)
	if !res.Date.Before(cutoff) {
		res.Kind = domain.WithinInterval
	} else {
		res.Kind = domain.OutsideInterval
	}
	return res
}

