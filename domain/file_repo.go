package domain

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	ErrInputNotFound = errors.New("input file not found")
	ErrCacheParse    = errors.New("cache file parse error")
)

// LoadDomains 读取域名列表，每行一个域名。空行保留为空域名，交给查询阶段失败处理。
func LoadDomains(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("无法打开域名文件 %s: %w", path, err)
	}
	defer file.Close()

	var out []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		out = append(out, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取域名文件 %s 出错: %w", path, err)
	}
	return out, nil
}

// FileCache 基于文件的注册日期缓存：每行 "<domain> <YYYY-MM-DD>"，只追加。
// 内存中的 map 在加载后只读，追加只写文件。
type FileCache struct {
	path    string
	entries map[string]time.Time

	mu sync.Mutex
}

// LoadCache 加载缓存文件。path 为空时返回不落盘的空缓存；文件不存在视为空缓存。
func LoadCache(path string) (*FileCache, error) {
	c := &FileCache{path: strings.TrimSpace(path), entries: map[string]time.Time{}}
	if c.path == "" {
		return c, nil
	}

	file, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("读取缓存文件失败: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseCacheLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", ErrCacheParse, c.path, lineNo, err)
		}
		key := NormalizeDomain(rec.Domain)
		if _, dup := c.entries[key]; dup {
			log.Printf("[cache] duplicate_entry domain=%s line=%d", key, lineNo)
			continue
		}
		c.entries[key] = rec.Date
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取缓存文件失败: %w", err)
	}
	return c, nil
}

func parseCacheLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("expected \"<domain> <date>\", got %q", line)
	}
	domain := strings.TrimSuffix(fields[0], ",")
	if domain == "" {
		return Record{}, fmt.Errorf("empty domain in %q", line)
	}
	date, err := time.Parse(DateLayout, fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("bad date %q: %w", fields[1], err)
	}
	return Record{Domain: domain, Date: date}, nil
}

func (c *FileCache) Lookup(domain string) (time.Time, bool) {
	t, ok := c.entries[NormalizeDomain(domain)]
	return t, ok
}

func (c *FileCache) Len() int {
	return len(c.entries)
}

func (c *FileCache) Path() string {
	return c.path
}

// Append 在互斥锁下以追加模式写入一行，保证并发写入不会交错。
func (c *FileCache) Append(domain string, date time.Time) error {
	if c.path == "" {
		return nil
	}
	line := fmt.Sprintf("%s %s\n", NormalizeDomain(domain), date.Format(DateLayout))

	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("打开缓存文件失败: %w", err)
	}
	if _, err := file.WriteString(line); err != nil {
		file.Close()
		return fmt.Errorf("写入缓存失败: %w", err)
	}
	return file.Close()
}

// OpenOutput 以追加模式打开输出文件，truncate 为 true 时先清空。
func OpenOutput(path string, truncate bool) (*os.File, error) {
	flags := os.O_APPEND | os.O_CREATE | os.O_WRONLY
	if truncate {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开输出文件失败: %w", err)
	}
	return file, nil
}
