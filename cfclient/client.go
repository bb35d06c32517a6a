package cfclient

import (
	"context"
	"fmt"
	"time"

	"DomainNRD/config"

	cloudflare "github.com/cloudflare/cloudflare-go"
)

// Client 列出 Cloudflare 账号下的 zone，作为待检查的域名来源。
type Client interface {
	ListZoneNames(ctx context.Context, account config.CF) ([]string, error)
}

type apiClient struct{}

// NewClient 返回默认的 Cloudflare API 客户端实现
func NewClient() Client {
	return &apiClient{}
}

func ensureTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 30*time.Second)
}

func (c *apiClient) ListZoneNames(ctx context.Context, account config.CF) ([]string, error) {
	ctx, cancel := ensureTimeout(ctx)
	defer cancel()

	api, err := cloudflare.NewWithAPIToken(account.APIToken)
	if err != nil {
		return nil, fmt.Errorf("初始化 Cloudflare 客户端失败 [%s]: %w", account.Label, err)
	}

	zones, err := api.ListZonesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取域名失败 [%s]: %w", account.Label, err)
	}

	out := make([]string, 0, len(zones.Result))
	for _, z := range zones.Result {
		out = append(out, z.Name)
	}
	return out, nil
}
