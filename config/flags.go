package config

import (
	"time"

	"github.com/alecthomas/kingpin/v2"
)

// Options 保存命令行参数。只有用户显式设置的参数才会覆盖配置文件。
type Options struct {
	ConfigPath string
	Input      string
	Output     string
	AutoYes    bool
	Cloudflare bool
	ACM        bool
	Notify     bool

	thresholdDays int
	verbosity     int
	threads       bool
	poolSize      int
	wait          int
	cacheFile     string
	rate          float64
	lookupTimeout time.Duration
	metricsAddr   string

	set map[string]*bool
}

func newApp(o *Options) *kingpin.Application {
	app := kingpin.New("nrd", "Check domain registration dates and report domains registered within a number of days.\n"+
		"By default only newly registered domains are printed. Repeat -v to print more.")
	app.HelpFlag.Short('h')

	o.set = map[string]*bool{}
	flag := func(name, help string) *kingpin.FlagClause {
		b := new(bool)
		o.set[name] = b
		return app.Flag(name, help).IsSetByUser(b)
	}

	app.Flag("config", "YAML config file").Default("config.yaml").StringVar(&o.ConfigPath)
	app.Flag("input", "File containing the list of domains (one per line)").Short('i').Required().StringVar(&o.Input)
	app.Flag("output", "File to write the output").Short('o').StringVar(&o.Output)
	app.Flag("yes", "Automatically overwrite the output file if it exists").Short('y').BoolVar(&o.AutoYes)
	app.Flag("cloudflare", "Also check zones of the configured Cloudflare accounts").BoolVar(&o.Cloudflare)
	app.Flag("acm", "Also check domain names of certificates in the configured ACM targets").BoolVar(&o.ACM)
	app.Flag("notify", "Send a Telegram summary when the run finishes").BoolVar(&o.Notify)

	flag("time", "Number of days to check registration against (default: 365)").Short('t').IntVar(&o.thresholdDays)
	flag("verbose", "Verbosity, repeat up to 3 times (-v, -vv, -vvv)").Short('v').CounterVar(&o.verbosity)
	flag("threads", "Enable concurrent checking").Short('x').BoolVar(&o.threads)
	flag("pool-size", "Number of concurrent workers when -x is set").Short('p').IntVar(&o.poolSize)
	flag("wait", "Seconds to wait after each live lookup (default: 0)").Short('w').IntVar(&o.wait)
	flag("cache", "Cache file of known registration dates").Short('c').StringVar(&o.cacheFile)
	flag("rate", "Maximum live lookups per second across all workers (0 = unlimited)").Float64Var(&o.rate)
	flag("lookup-timeout", "Timeout for a single live lookup (0 = none)").DurationVar(&o.lookupTimeout)
	flag("metrics-addr", "Serve Prometheus metrics on this address").StringVar(&o.metricsAddr)

	return app
}

// ParseArgs 解析命令行参数（不含程序名）。
func ParseArgs(args []string) (Options, error) {
	var o Options
	app := newApp(&o)
	if _, err := app.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func (o Options) isSet(name string) bool {
	b, ok := o.set[name]
	return ok && *b
}

// Apply 用显式设置的命令行参数覆盖配置。
func (o Options) Apply(cfg *Config) error {
	if o.isSet("time") {
		cfg.ThresholdDays = o.thresholdDays
	}
	if o.isSet("verbose") {
		cfg.Verbosity = o.verbosity
	}
	if o.isSet("threads") {
		cfg.Threads = o.threads
	}
	if o.isSet("pool-size") {
		cfg.PoolSize = o.poolSize
	}
	if o.isSet("wait") {
		cfg.Wait = o.wait
	}
	if o.isSet("cache") {
		cfg.CacheFile = o.cacheFile
	}
	if o.isSet("rate") {
		cfg.RateLimit = o.rate
	}
	if o.isSet("lookup-timeout") {
		cfg.LookupTimeout = o.lookupTimeout
	}
	if o.isSet("metrics-addr") {
		cfg.MetricsAddr = o.metricsAddr
	}
	return cfg.Validate()
}
