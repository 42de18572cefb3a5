package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/HazeMiya/ai-2024/cmd/pipeline"
	"github.com/HazeMiya/ai-2024/internal/cache"
	"github.com/HazeMiya/ai-2024/internal/config"
	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/report"
	"github.com/HazeMiya/ai-2024/internal/server"
	"github.com/HazeMiya/ai-2024/internal/stage"
	"github.com/HazeMiya/ai-2024/internal/wiki"
)

type stageFunc func(ctx context.Context, in, out string) (stage.Stats, error)

var (
	runFilter   stageFunc = pipeline.Filter
	runISBN     stageFunc = pipeline.ISBN
	runWiki     stageFunc = pipeline.Wiki
	runClassify stageFunc = pipeline.Classify
	runGeocode  stageFunc = pipeline.Geocode
	runExport   stageFunc = pipeline.Export
	runPipeline           = pipeline.Run
	serveAPI              = func(ctx context.Context, addr string) error {
		client := wiki.NewClient(viper.GetString("wiki.lang"))
		return server.New(client).ListenAndServe(ctx, addr)
	}
)

// CLI represents the complete command structure for the bookprep application
type CLI struct {
	// Global flags
	NoOverwrite bool   `help:"Keep existing stage output files instead of overwriting them"`
	LogLevel    string `help:"Log level (debug, info, warn, error)"`

	// Datasette flags
	Datasette   bool   `help:"Also write the export to the books table"`
	DatasetteDB string `help:"Path to SQLite database file for the books table"`

	// Cache flags
	NoCache     bool   `help:"Bypass the persistent lookup cache"`
	CacheDBFile string `help:"Path to cache SQLite database file"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`

	Filter   FilterCmd   `cmd:"" help:"Keep prize winners and merge rows per work"`
	ISBN     ISBNCmd     `cmd:"" name:"isbn" help:"Resolve an ISBN for every work"`
	Wiki     WikiCmd     `cmd:"" help:"Attach Wikipedia synopses and facts"`
	Classify ClassifyCmd `cmd:"" help:"Extract genre, season, age and setting with an LLM"`
	Geocode  GeocodeCmd  `cmd:"" help:"Attach coordinates for each setting"`
	Export   ExportCmd   `cmd:"" help:"Write the final JSON array"`
	Run      RunCmd      `cmd:"" help:"Run every stage in order"`
	Report   ReportCmd   `cmd:"" help:"Show per-column fill rates of a stage file"`
	Serve    ServeCmd    `cmd:"" help:"Serve the book analysis demo API"`
	Cache    CacheCmd    `cmd:"" help:"Manage the persistent lookup cache"`
}

// StageFiles overrides the configured stage input and output.
type StageFiles struct {
	Input  string `short:"f" help:"Input CSV file (defaults to the configured stage file)"`
	Output string `short:"o" help:"Output file (defaults to the configured stage file)"`
}

func (s StageFiles) resolve(inKey, outKey string) (string, string) {
	in, out := s.Input, s.Output
	if in == "" {
		in = viper.GetString(inKey)
	}
	if out == "" {
		out = viper.GetString(outKey)
	}
	return in, out
}

// FilterCmd represents the filter command
type FilterCmd struct {
	StageFiles `embed:""`
	Prizes     []string `help:"Prize names to keep (defaults to filter.prizes)"`
}

// ISBNCmd represents the isbn command
type ISBNCmd struct {
	StageFiles `embed:""`
}

// WikiCmd represents the wiki command
type WikiCmd struct {
	StageFiles         `embed:""`
	Workers            int  `help:"Concurrent lookups (defaults to wiki.workers)"`
	TitleFallback      bool `help:"Retry the search without the author"`
	AuthorPageFallback bool `help:"Use the author's page when no article matches"`
}

// ClassifyCmd represents the classify command
type ClassifyCmd struct {
	StageFiles `embed:""`
	Provider   string `help:"LLM provider (anthropic, gemini)"`
	Model      string `help:"Model name (defaults to llm.model)"`
}

// GeocodeCmd represents the geocode command
type GeocodeCmd struct {
	StageFiles `embed:""`
}

// ExportCmd represents the export command
type ExportCmd struct {
	StageFiles `embed:""`
	Sentinel   string `help:"How missing values are written (nan, empty, null)"`
}

// RunCmd represents the run command
type RunCmd struct {
	From string `help:"Start at this stage"`
}

// ReportCmd represents the report command
type ReportCmd struct {
	File string `arg:"" optional:"" help:"Stage CSV file (defaults to files.geocoded)"`
}

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to serve.addr)"`
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Clear one lookup cache table"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging("")
	initConfig()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bookprep"),
		kong.Description("Builds the award-winning novel dataset from the raw prize list."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)
	initLogging(viper.GetString("log.level"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	viper.AutomaticEnv()
	bindings := map[string]string{
		"AnthropicAPIKey":   "ANTHROPIC_API_KEY",
		"GeminiAPIKey":      "GEMINI_API_KEY",
		"GoogleBooksAPIKey": "GOOGLE_BOOKS_API_KEY",
		"log.level":         "BOOKPREP_LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "key", key, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.NoOverwrite {
		config.SetOverwriteFiles(false)
	}
	if cli.LogLevel != "" {
		viper.Set("log.level", cli.LogLevel)
	}

	if cli.Datasette {
		viper.Set("datasette.enabled", true)
	}
	if cli.DatasetteDB != "" {
		viper.Set("datasette.dbfile", cli.DatasetteDB)
	}

	if cli.NoCache {
		viper.Set("cache.enabled", false)
	}
	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
}

// Run methods for each command

func (f *FilterCmd) Run(ctx context.Context) error {
	if len(f.Prizes) > 0 {
		viper.Set("filter.prizes", f.Prizes)
	}
	in, out := f.resolve("files.raw", "files.filtered")
	_, err := runFilter(ctx, in, out)
	return err
}

func (i *ISBNCmd) Run(ctx context.Context) error {
	in, out := i.resolve("files.filtered", "files.isbn")
	_, err := runISBN(ctx, in, out)
	return err
}

func (w *WikiCmd) Run(ctx context.Context) error {
	if w.Workers > 0 {
		viper.Set("wiki.workers", w.Workers)
	}
	if w.TitleFallback {
		viper.Set("wiki.title_fallback", true)
	}
	if w.AuthorPageFallback {
		viper.Set("wiki.author_page_fallback", true)
	}
	in, out := w.resolve("files.isbn", "files.wiki")
	_, err := runWiki(ctx, in, out)
	return err
}

func (c *ClassifyCmd) Run(ctx context.Context) error {
	if c.Provider != "" {
		viper.Set("llm.provider", c.Provider)
	}
	if c.Model != "" {
		viper.Set("llm.model", c.Model)
	}
	in, out := c.resolve("files.wiki", "files.classified")
	_, err := runClassify(ctx, in, out)
	return err
}

func (g *GeocodeCmd) Run(ctx context.Context) error {
	in, out := g.resolve("files.classified", "files.geocoded")
	_, err := runGeocode(ctx, in, out)
	return err
}

func (e *ExportCmd) Run(ctx context.Context) error {
	if e.Sentinel != "" {
		viper.Set("export.sentinel_mode", e.Sentinel)
	}
	in, out := e.resolve("files.geocoded", "files.json")
	_, err := runExport(ctx, in, out)
	return err
}

func (r *RunCmd) Run(ctx context.Context) error {
	stats, err := runPipeline(ctx, pipeline.FilesFromConfig(), r.From)
	if len(stats) > 0 {
		fmt.Println(report.RenderStages(stats))
	}
	return err
}

func (r *ReportCmd) Run() error {
	file := r.File
	if file == "" {
		file = viper.GetString("files.geocoded")
	}
	t, err := csvutil.ReadFile(file)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d rows)\n", file, t.Len())
	fmt.Println(report.RenderFill(t))
	return nil
}

func (s *ServeCmd) Run(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = viper.GetString("serve.addr")
	}
	return serveAPI(ctx, addr)
}

func initLogging(level string) {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: parseLevel(level),
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
