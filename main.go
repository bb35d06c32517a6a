package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"DomainNRD/acmclient"
	"DomainNRD/cfclient"
	"DomainNRD/config"
	"DomainNRD/domain"
	"DomainNRD/internal/app"
	"DomainNRD/metrics"
	"DomainNRD/telegram"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)

	opts, err := config.ParseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "加载配置失败: %v\n", err)
		return 1
	}
	if err := opts.Apply(&cfg); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	// 输出文件已存在时先确认是否覆盖
	var outFile *os.File
	if opts.Output != "" {
		if _, err := os.Stat(opts.Output); err == nil && !opts.AutoYes {
			if !confirmOverwrite(stdin, stdout, opts.Output) {
				fmt.Fprintln(stdout, "Operation aborted by the user.")
				return 0
			}
		}
		outFile, err = domain.OpenOutput(opts.Output, true)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer outFile.Close()
	}

	domains, err := domain.LoadDomains(opts.Input)
	if err != nil {
		if errors.Is(err, domain.ErrInputNotFound) {
			fmt.Fprintf(stderr, "Error: file %s not found!\n", opts.Input)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cache, err := domain.LoadCache(cfg.CacheFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if cache.Path() != "" {
		log.Printf("[nrd] cache_loaded path=%s size=%d", cache.Path(), cache.Len())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		metrics.Serve(ctx, cfg.MetricsAddr)
	}

	if opts.Cloudflare || opts.ACM {
		collector := &app.Collector{Accounts: cfg.CloudflareAccounts, Targets: cfg.AWSTargets}
		if opts.Cloudflare {
			collector.CF = cfclient.NewClient()
		}
		if opts.ACM {
			collector.ACM = acmclient.NewClient()
		}
		domains = app.MergeDomains(domains, collector.Collect(ctx))
	}

	checker := &app.RegistrationChecker{
		Lookup:        app.DefaultWhoisClient{},
		Cache:         cache,
		ThresholdDays: cfg.ThresholdDays,
		QueryTimeout:  cfg.LookupTimeout,
	}
	if cfg.RateLimit > 0 {
		checker.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	application := &app.App{
		Checker:    checker,
		Out:        stdout,
		Verbosity:  cfg.Verbosity,
		Delay:      cfg.Delay(),
		Concurrent: cfg.Threads,
		PoolSize:   cfg.PoolSize,
	}
	// 重定向到文件或管道时不画进度行
	if isTerminal(stderr) {
		application.Progress = stderr
	}
	if outFile != nil {
		application.OutputFile = outFile
		application.OutputPath = opts.Output
	}
	if opts.Notify {
		sender, err := telegram.NewBotSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID, 2, time.Second, 10*time.Second)
		if err != nil {
			log.Printf("[notify] 初始化 Telegram 失败，跳过通知: %v", err)
		} else {
			defer sender.Close()
			application.Notifier = &app.NotifierService{Sender: sender, ThresholdDays: cfg.ThresholdDays}
		}
	}

	if _, err := application.Run(ctx, domains); err != nil {
		fmt.Fprintf(stderr, "程序退出: %v\n", err)
		return 1
	}
	return 0
}

func confirmOverwrite(in io.Reader, out io.Writer, path string) bool {
	fmt.Fprintf(out, "The file '%s' already exists. Do you want to overwrite it? (y/n): ", path)
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
