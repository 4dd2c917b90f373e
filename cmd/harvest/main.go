package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/goquery"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/readability"
	"github.com/fwojciec/harvest/runner"
	harvestslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/smtp"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/fwojciec/harvest/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	JobService  harvest.JobService
	TaskService harvest.TaskService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Load .env if present; missing files are fine.
	_ = godotenv.Load()

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("harvest"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'harvest --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set HARVEST_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.JobService = sqlite.NewJobService(m.DB)
	m.TaskService = sqlite.NewTaskService(m.DB)
	deps.DB = m.DB
	deps.Jobs = m.JobService
	deps.Tasks = m.TaskService
	deps.Sitemaps = harvesthttp.NewSitemapSource(nil)

	// Commands that execute jobs need the fetch/extract pipeline.
	if cmd == "scrape" || cmd == "serve" {
		extractorName := defaultExtractor
		concurrency := 0
		if cmd == "scrape" {
			extractorName = cli.Scrape.Extractor
			concurrency = cli.Scrape.Concurrency
		}

		extractor, err := newExtractor(extractorName)
		if err != nil {
			return err
		}

		fetcher := harvestslog.NewLoggingFetcher(
			runner.NewRetryFetcher(harvesthttp.NewFetcher(), deps.Logger), deps.Logger)
		defer fetcher.Close()

		deps.Runner = &runner.Runner{
			Jobs:        m.JobService,
			Fetcher:     fetcher,
			Extractor:   extractor,
			RateLimiter: runner.NewDomainLimiter(1.0),
			Concurrency: concurrency,
		}
	}

	if cmd == "serve" {
		deps.Notifier = harvestslog.NewLoggingNotifier(
			smtp.NewNotifier(smtp.ConfigFromEnv(), deps.Logger), deps.Logger)
	}

	return kongCtx.Run(deps)
}

const defaultExtractor = "trafilatura"

// newExtractor maps an extractor name to its implementation.
func newExtractor(name string) (harvest.Extractor, error) {
	switch name {
	case "trafilatura":
		return trafilatura.NewExtractor(), nil
	case "readability":
		return readability.NewExtractor(), nil
	case "plain":
		return goquery.NewExtractor(), nil
	default:
		return nil, harvest.Errorf(harvest.EINVALID, "unknown extractor %q", name)
	}
}

func defaultDBPath() string {
	if path := os.Getenv("HARVEST_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "harvest.db"
	}
	dir := filepath.Join(home, ".harvest")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "harvest.db")
}
