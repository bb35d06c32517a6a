package domain

import "time"

// CacheStore 提供注册日期缓存的读取与追加写入。
type CacheStore interface {
	// Lookup 只读取启动时加载的内容，运行期间追加的记录不可见。
	Lookup(domain string) (time.Time, bool)
	// Append 追加一条记录，需要支持并发调用。
	Append(domain string, date time.Time) error
}
