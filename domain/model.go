package domain

import (
	"strings"
	"time"
)

// DateLayout 是缓存文件与输出中使用的日期格式（精确到天）。
const DateLayout = "2006-01-02"

// Kind 是单个域名的分类结果。
type Kind int

const (
	WithinInterval Kind = iota
	OutsideInterval
	NoDate
	LookupFailed
)

func (k Kind) String() string {
	switch k {
	case WithinInterval:
		return "within_interval"
	case OutsideInterval:
		return "outside_interval"
	case NoDate:
		return "no_date"
	case LookupFailed:
		return "lookup_failed"
	default:
		return "unknown"
	}
}

// IsError 表示该结果计入错误数。
func (k Kind) IsError() bool {
	return k == NoDate || k == LookupFailed
}

// Result 是一次分类的完整输出。Date 仅在 HasDate 为 true 时有效。
type Result struct {
	Domain   string
	Kind     Kind
	Days     int
	Date     time.Time
	HasDate  bool
	CacheHit bool
	Message  string

	// CacheErr 记录查询成功但写缓存失败的错误，不影响分类结果。
	CacheErr error
}

// Record 是缓存中的一条记录。
type Record struct {
	Domain string
	Date   time.Time
}

func NormalizeDomain(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.TrimSuffix(s, ".")
}
