package tools

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/likexian/whois"
	"github.com/openrdap/rdap"
)

var creationRegex = regexp.MustCompile(
	`(?im)^\s*(creation date|created on|created|domain registration date|registration time|registered on|registered|domain create date|record created)\s*[:.]*\s*([0-9A-Za-z ,:/\-T\.Z+]+?)\s*$`,
)

var layouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"02-Jan-2006",
	"02.01.2006",
	"Jan 02, 2006",
	"January 2 2006",
	"January 02 2006",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"Mon Jan 2 15:04:05 MST 2006",
}

// ParseDate 按常见 WHOIS/RDAP 日期格式解析，返回 UTC 零点。
func ParseDate(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(strings.Trim(s, ":"))
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return TruncateDay(t), true
		}
	}
	return time.Time{}, false
}

// ExtractCreationDates 从 WHOIS 原文中提取所有注册日期，按出现顺序返回。
func ExtractCreationDates(result string) []time.Time {
	result = strings.ReplaceAll(result, "\r\n", "\n")

	var out []time.Time
	for _, match := range creationRegex.FindAllStringSubmatch(result, -1) {
		if len(match) < 3 {
			continue
		}
		if t, ok := ParseDate(match[2]); ok {
			out = append(out, t)
		}
	}
	return out
}

// Earliest 返回最早的日期。
func Earliest(dates []time.Time) (time.Time, bool) {
	if len(dates) == 0 {
		return time.Time{}, false
	}
	sorted := append([]time.Time(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return sorted[0], true
}

func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysSince 计算 now 与 date 之间的整天数（UTC 日历天），date 在未来时为负数。
func DaysSince(date, now time.Time) int {
	// 不用 time.Duration：超过约 292 年会饱和
	return int((TruncateDay(now).Unix() - TruncateDay(date).Unix()) / 86400)
}

var ErrEmptyDomain = errors.New("empty domain")

// CheckRegistration 查询注册日期：RDAP 优先，WHOIS 兜底。
// 查询成功但没有日期时返回 nil, nil。
func CheckRegistration(ctx context.Context, domain string) ([]time.Time, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}

	// 1) RDAP 优先
	client := &rdap.Client{}
	resp, err := client.Do(rdap.NewDomainRequest(domain).WithContext(ctx))
	if err == nil && resp != nil {
		if d, ok := resp.Object.(*rdap.Domain); ok {
			var dates []time.Time
			for _, event := range d.Events {
				if !strings.EqualFold(event.Action, "registration") {
					continue
				}
				if t, ok := ParseDate(event.Date); ok {
					dates = append(dates, t)
				}
			}
			if len(dates) > 0 {
				return dates, nil
			}
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	// 2) WHOIS
	result, err := whois.Whois(domain)
	if err != nil {
		return nil, fmt.Errorf("whois: %w", err)
	}
	return ExtractCreationDates(result), nil
}
