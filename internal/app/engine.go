package app

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"DomainNRD/domain"
)

type Processor interface {
	Process(ctx context.Context, name string) domain.Kind
}

// BatchEngine 把域名分发给 worker。并发模式下池大小固定为 PoolSize，
// 所有任务结束后返回第一个未处理的异常。
type BatchEngine struct {
	Worker     Processor
	Concurrent bool
	PoolSize   int
}

func (e *BatchEngine) Run(ctx context.Context, domains []string) error {
	if e.Worker == nil {
		return ErrMissingDependencies
	}

	if !e.Concurrent {
		for _, name := range domains {
			if err := safeProcess(ctx, e.Worker, name); err != nil {
				return err
			}
		}
		return nil
	}

	poolSize := e.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	log.Printf("[nrd] pool_started size=%d domains=%d", poolSize, len(domains))

	var g errgroup.Group
	g.SetLimit(poolSize)
	for _, name := range domains {
		g.Go(func() error {
			return safeProcess(ctx, e.Worker, name)
		})
	}
	return g.Wait()
}

func safeProcess(ctx context.Context, p Processor, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("处理域名 %q 时发生异常: %v", name, r)
		}
	}()
	p.Process(ctx, name)
	return nil
}
