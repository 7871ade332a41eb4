package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/snipminer"
	"github.com/fwojciec/snipminer/config"
	"github.com/fwojciec/snipminer/github"
	"github.com/fwojciec/snipminer/goquery"
	"github.com/fwojciec/snipminer/harvest"
	sniphttp "github.com/fwojciec/snipminer/http"
	"github.com/fwojciec/snipminer/rabbitmq"
	"github.com/fwojciec/snipminer/rod"
	snipslog "github.com/fwojciec/snipminer/slog"
	"github.com/fwojciec/snipminer/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config loaded by Run. Flags override its values.
	Config *config.Config

	// SQLite database, opened only when a command needs it.
	DB *sqlite.DB

	// Closers run in reverse order by Close.
	closers []io.Closer
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases every resource opened by Run.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("snipminer"),
		kong.Description("Harvest code snippets from GitHub gists and Stack Overflow."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'snipminer --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	cli.apply(cfg)
	m.Config = cfg

	deps.Logger = newLogger(stderr, cfg.LogLevel, cli.Verbose)
	deps.OutDir = cfg.OutputDir
	deps.Store = cli.Store

	defer m.Close()

	if cli.Store || cmd == "snippets" || cmd == "runs" {
		if err := m.openDB(cfg.Database); err != nil {
			fmt.Fprintln(stderr, "Hint: Set SNIPMINER_DB or --db to use a different database path")
			return err
		}
		deps.Snippets = sqlite.NewSnippetService(m.DB)
		deps.Gists = sqlite.NewGistService(m.DB)
		deps.Runs = sqlite.NewRunService(m.DB)
	}

	if cli.Publish {
		pub, err := rabbitmq.Dial(rabbitmq.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, deps.Logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Set SNIPMINER_AMQP_URL to point at a running broker")
			return err
		}
		m.closers = append(m.closers, pub)
		deps.SnippetPublisher = pub
		deps.GistPublisher = pub
	}

	switch cmd {
	case "gist", "gists", "public-gists", "search-gists":
		deps.GistClient = m.gistClient(cfg, deps.Logger)
	case "search", "question", "feed":
		h, err := m.harvester(cfg, cli.Browser, deps.Logger)
		if err != nil {
			return err
		}
		deps.Harvester = h
	}

	return kongCtx.Run(deps)
}

func (m *Main) openDB(path string) error {
	if path != ":memory:" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	m.closers = append(m.closers, m.DB)
	return nil
}

func (m *Main) gistClient(cfg *config.Config, logger *slog.Logger) *github.Client {
	api := sniphttp.NewClient(
		sniphttp.WithTimeout(cfg.GitHub.Timeout),
		sniphttp.WithAccept(github.DefaultAccept),
		sniphttp.WithToken(cfg.GitHub.Token),
		sniphttp.WithRetryDelays(cfg.HTTP.RetryDelays),
	)
	raw := sniphttp.NewClient(
		sniphttp.WithTimeout(cfg.GitHub.Timeout),
		sniphttp.WithRetryDelays(cfg.HTTP.RetryDelays),
	)
	m.closers = append(m.closers, raw)

	return github.NewClient(
		snipslog.NewLoggingAPIClient(api, logger),
		snipslog.NewLoggingFetcher(raw, logger),
		github.WithBaseURL(cfg.GitHub.BaseURL),
		github.WithConcurrency(cfg.Concurrency),
		github.WithLogger(logger),
	)
}

func (m *Main) harvester(cfg *config.Config, browser bool, logger *slog.Logger) (*harvest.Harvester, error) {
	var fetcher snipminer.Fetcher
	if browser {
		f, err := rod.NewFetcher(
			rod.WithBin(cfg.Browser.Bin),
			rod.WithUserAgent(cfg.StackOverflow.UserAgent),
			rod.WithTimeout(cfg.StackOverflow.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = sniphttp.NewClient(
			sniphttp.WithTimeout(cfg.StackOverflow.Timeout),
			sniphttp.WithUserAgent(cfg.StackOverflow.UserAgent),
			sniphttp.WithRetryDelays(cfg.HTTP.RetryDelays),
		)
	}
	m.closers = append(m.closers, fetcher)

	logged := snipslog.NewLoggingFetcher(fetcher, logger)
	return &harvest.Harvester{
		Fetcher:     logged,
		Parser:      goquery.NewQuestionParser(cfg.StackOverflow.BaseURL),
		Feed:        sniphttp.NewFeedService(logged, cfg.StackOverflow.BaseURL),
		BaseURL:     cfg.StackOverflow.BaseURL,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}, nil
}

func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
