package acmclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/acm"

	"DomainNRD/config"
)

// Client 列出 ACM 证书覆盖的域名。
type Client interface {
	ListCertificateDomains(ctx context.Context, target config.AWSTarget) ([]string, error)
}

type apiClient struct{}

func NewClient() Client {
	return &apiClient{}
}

func loadConfig(ctx context.Context, target config.AWSTarget) (aws.Config, error) {
	if strings.TrimSpace(target.Region) == "" {
		return aws.Config{}, fmt.Errorf("aws target region 为空")
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(target.Region)}
	// 未配置静态凭证时走默认凭证链
	if strings.TrimSpace(target.Creds.AccessKeyID) != "" && strings.TrimSpace(target.Creds.SecretAccessKey) != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					target.Creds.AccessKeyID,
					target.Creds.SecretAccessKey,
					target.Creds.SessionToken,
				),
			),
		))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

func (c *apiClient) ListCertificateDomains(ctx context.Context, target config.AWSTarget) ([]string, error) {
	cfg, err := loadConfig(ctx, target)
	if err != nil {
		return nil, err
	}
	client := acm.NewFromConfig(cfg)

	var out []string
	p := acm.NewListCertificatesPaginator(client, &acm.ListCertificatesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("acm list certificates: %w", err)
		}
		for _, cert := range page.CertificateSummaryList {
			if name := CertDomain(aws.ToString(cert.DomainName)); name != "" {
				out = append(out, name)
			}
		}
	}
	return out, nil
}

// CertDomain 去掉通配符前缀，得到可查询的注册域名。
func CertDomain(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.TrimPrefix(name, "*.")
}
