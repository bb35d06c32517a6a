package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"DomainNRD/telegram"
)

// NotifierService 在运行结束后发送新注册域名汇总。
type NotifierService struct {
	Sender        telegram.Sender
	ThresholdDays int
}

func (n *NotifierService) Notify(ctx context.Context, snap Snapshot, newly []string) error {
	if n.Sender == nil {
		return ErrMissingDependencies
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("【新注册域名检查完成】\n阈值: %d 天\n已处理: %d/%d  新注册: %d  缓存命中: %d  错误: %d\n",
		n.ThresholdDays, snap.Processed, snap.Total, snap.Newly, snap.CacheHits, snap.Errors))
	if len(newly) > 0 {
		builder.WriteString("\n")
		for _, d := range newly {
			builder.WriteString(fmt.Sprintf("- %s\n", d))
		}
	}
	return n.Sender.Send(ctx, builder.String())
}

// NotifyFile 上传输出文件，失败只记录日志。
func (n *NotifierService) NotifyFile(ctx context.Context, path string) {
	if n.Sender == nil || strings.TrimSpace(path) == "" {
		return
	}
	if err := n.Sender.SendDocumentPath(ctx, path, "nrd output"); err != nil {
		log.Printf("[notify] send_document_failed path=%s err=%v", path, err)
	}
}
