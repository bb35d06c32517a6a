package app

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Reporter 渲染单行进度。调用方负责串行化。
type Reporter interface {
	Update(s Snapshot)
	Clear()
	Finish(s Snapshot)
}

type NoopReporter struct{}

func (NoopReporter) Update(Snapshot) {}
func (NoopReporter) Clear()          {}
func (NoopReporter) Finish(Snapshot) {}

// TerminalReporter 用回车 + 空格填充的方式原地覆盖进度行。
type TerminalReporter struct {
	w       io.Writer
	lastLen int
}

func NewTerminalReporter(w io.Writer) *TerminalReporter {
	return &TerminalReporter{w: w}
}

func FormatProgress(s Snapshot) string {
	minutes := int(s.Elapsed.Minutes())
	return fmt.Sprintf("Processed: %d/%d | New: %d | Cache: %d | Errors: %d | Started: %s | Elapsed: %02d:%02d",
		s.Processed, s.Total, s.Newly, s.CacheHits, s.Errors,
		s.Start.Format("2006-01-02 15:04:05"), minutes/60, minutes%60)
}

func (r *TerminalReporter) Update(s Snapshot) {
	line := FormatProgress(s)
	pad := ""
	if r.lastLen > len(line) {
		pad = strings.Repeat(" ", r.lastLen-len(line))
	}
	fmt.Fprint(r.w, "\r"+line+pad)
	r.lastLen = len(line)
}

func (r *TerminalReporter) Clear() {
	if r.lastLen == 0 {
		return
	}
	fmt.Fprint(r.w, "\r"+strings.Repeat(" ", r.lastLen)+"\r")
	r.lastLen = 0
}

func (r *TerminalReporter) Finish(s Snapshot) {
	r.Update(s)
	fmt.Fprintln(r.w)
	r.lastLen = 0
}

// Console 是结果行与进度行共享的输出端。
// "擦除进度 → 输出结果 → 写文件 → 重绘进度" 在同一个临界区内完成。
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	file     io.Writer
	reporter Reporter
	last     Snapshot
	drawn    bool
}

func NewConsole(out, file io.Writer, reporter Reporter) *Console {
	if reporter == nil {
		reporter = NoopReporter{}
	}
	return &Console{out: out, file: file, reporter: reporter}
}

func (c *Console) Emit(line string, s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reporter.Clear()
	var err error
	if line != "" {
		fmt.Fprintln(c.out, line)
		if c.file != nil {
			if _, werr := io.WriteString(c.file, line+"\n"); werr != nil {
				err = fmt.Errorf("写入输出文件失败: %w", werr)
			}
		}
	}
	c.reporter.Update(s)
	c.last, c.drawn = s, true
	return err
}

// Logf 与 Emit 共用临界区：擦除进度行后写日志，再重绘。
func (c *Console) Logf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reporter.Clear()
	log.Printf(format, args...)
	if c.drawn {
		c.reporter.Update(c.last)
	}
}

func (c *Console) Finish(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reporter.Finish(s)
	c.drawn = false
}
