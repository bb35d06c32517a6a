package app

import (
	"context"
	"errors"
	"time"

	"DomainNRD/tools"
)

// LookupClient 查询域名的注册日期。成功但没有日期时返回空切片和 nil。
type LookupClient interface {
	Lookup(ctx context.Context, domain string) ([]time.Time, error)
}

var ErrMissingDependencies = errors.New("missing dependencies")

// DefaultWhoisClient 使用 RDAP/WHOIS 查询。WHOIS 库不支持 context，这里用 goroutine 包一层。
type DefaultWhoisClient struct{}

func (DefaultWhoisClient) Lookup(ctx context.Context, domain string) ([]time.Time, error) {
	type result struct {
		dates []time.Time
		err   error
	}

	ch := make(chan result, 1)

	go func() {
		dates, err := tools.CheckRegistration(ctx, domain)
		ch <- result{dates: dates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.dates, res.err
	}
}
