package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender 抽象出 Telegram 发送能力，便于替换和测试。
type Sender interface {
	Send(ctx context.Context, msg string) error
	SendDocumentPath(ctx context.Context, filepath string, caption string) error
}

type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, msg string) error { return nil }
func (NoopSender) SendDocumentPath(ctx context.Context, filepath string, caption string) error {
	return nil
}

// BotSender 实现了带简单重试和节流的 Telegram 发送能力。
type BotSender struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	retryTimes int
	rate       *time.Ticker
	timeout    time.Duration
}

func NewBotSender(token string, chatID int64, retryTimes int, rateInterval time.Duration, timeout time.Duration) (*BotSender, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &BotSender{
		bot:        bot,
		chatID:     chatID,
		retryTimes: retryTimes,
		rate:       time.NewTicker(rateInterval),
		timeout:    timeout,
	}, nil
}

// Close 停止节流 ticker，可重复调用。
func (s *BotSender) Close() {
	if s.rate != nil {
		s.rate.Stop()
	}
}

const tgMaxLen = 3800

func (s *BotSender) Send(ctx context.Context, msg string) error {
	parts := SplitText(msg, tgMaxLen)
	for i, p := range parts {
		if len(parts) > 1 {
			p = fmt.Sprintf("(%d/%d)\n%s", i+1, len(parts), p)
		}
		if err := s.send(ctx, tgbotapi.NewMessage(s.chatID, p)); err != nil {
			return fmt.Errorf("发送 Telegram 失败: %w", err)
		}
	}
	return nil
}

func (s *BotSender) SendDocumentPath(ctx context.Context, filepath string, caption string) error {
	if filepath == "" {
		return errors.New("filepath is empty")
	}
	doc := tgbotapi.NewDocument(s.chatID, tgbotapi.FilePath(filepath))
	doc.Caption = caption
	if err := s.send(ctx, doc); err != nil {
		return fmt.Errorf("发送文件失败: %w", err)
	}
	return nil
}

// send 按节流间隔发送，超时或失败时重试 retryTimes 次。
func (s *BotSender) send(ctx context.Context, c tgbotapi.Chattable) error {
	var lastErr error
	for attempt := 0; attempt <= s.retryTimes; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.rate.C:
		}

		sendCtx := ctx
		cancel := func() {}
		if s.timeout > 0 {
			sendCtx, cancel = context.WithTimeout(ctx, s.timeout)
		}
		result := make(chan error, 1)
		go func() {
			_, err := s.bot.Send(c)
			result <- err
		}()

		select {
		case <-sendCtx.Done():
			lastErr = sendCtx.Err()
		case err := <-result:
			lastErr = err
		}
		cancel()
		if lastErr == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
	}
	return lastErr
}

// SplitText 按 limit 切分长消息，优先在换行处切。
func SplitText(s string, limit int) []string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return []string{s}
	}

	var out []string
	for len(s) > limit {
		cut := strings.LastIndex(s[:limit], "\n")
		if cut < limit/3 {
			cut = strings.LastIndex(s[:limit], " ")
		}
		if cut <= 0 {
			cut = limit
		}
		if part := strings.TrimSpace(s[:cut]); part != "" {
			out = append(out, part)
		}
		s = strings.TrimSpace(s[cut:])
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
