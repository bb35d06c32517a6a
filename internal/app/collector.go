package app

import (
	"context"
	"log"
	"sort"

	"DomainNRD/acmclient"
	"DomainNRD/cfclient"
	"DomainNRD/config"
	"DomainNRD/domain"
)

// Collector 从 Cloudflare / ACM 收集额外的待检查域名。单个来源失败只记录日志。
type Collector struct {
	CF       cfclient.Client
	ACM      acmclient.Client
	Accounts []config.CF
	Targets  map[string]config.AWSTarget
}

func (c *Collector) Collect(ctx context.Context) []string {
	var out []string
	if c.CF != nil {
		for _, acc := range c.Accounts {
			names, err := c.CF.ListZoneNames(ctx, acc)
			if err != nil {
				log.Printf("[source] cloudflare_failed account=%s err=%v", acc.Label, err)
				continue
			}
			log.Printf("[source] cloudflare account=%s zones=%d", acc.Label, len(names))
			out = append(out, names...)
		}
	}
	if c.ACM != nil {
		aliases := make([]string, 0, len(c.Targets))
		for alias := range c.Targets {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)
		for _, alias := range aliases {
			names, err := c.ACM.ListCertificateDomains(ctx, c.Targets[alias])
			if err != nil {
				log.Printf("[source] acm_failed target=%s err=%v", alias, err)
				continue
			}
			log.Printf("[source] acm target=%s domains=%d", alias, len(names))
			out = append(out, names...)
		}
	}
	return out
}

// MergeDomains 把额外来源追加到输入列表之后。输入列表原样保留（包括重复和空行），
// 额外来源中已出现过的域名会被跳过。
func MergeDomains(input, extra []string) []string {
	seen := make(map[string]struct{}, len(input)+len(extra))
	for _, d := range input {
		seen[domain.NormalizeDomain(d)] = struct{}{}
	}
	out := append([]string(nil), input...)
	for _, d := range extra {
		key := domain.NormalizeDomain(d)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
