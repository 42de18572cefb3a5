package cmd

import (
	"context"
	"os"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HazeMiya/ai-2024/cmd/pipeline"
	"github.com/HazeMiya/ai-2024/internal/cache"
	"github.com/HazeMiya/ai-2024/internal/config"
	"github.com/HazeMiya/ai-2024/internal/stage"
	"github.com/HazeMiya/ai-2024/internal/testutil"
)

func resetCmdState(t *testing.T) {
	testutil.SetTestConfig(t)
}

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"bookprep"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("bookprep"),
		kong.Description("Builds the award-winning novel dataset from the raw prize list."),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)
	ctx.BindTo(context.Background(), (*context.Context)(nil))

	return cli, ctx
}

// recordStage replaces a stage runner and records the files it was given.
func recordStage(t *testing.T, target *stageFunc) *[2]string {
	t.Helper()
	orig := *target
	t.Cleanup(func() { *target = orig })

	var got [2]string
	*target = func(_ context.Context, in, out string) (stage.Stats, error) {
		got = [2]string{in, out}
		return stage.Stats{}, nil
	}
	return &got
}

func TestUpdateGlobalConfig(t *testing.T) {
	resetCmdState(t)

	cli := &CLI{
		NoOverwrite: true,
		LogLevel:    "debug",
		Datasette:   true,
		DatasetteDB: "/tmp/books.db",
		NoCache:     true,
		CacheDBFile: "/tmp/cache.db",
		CacheTTL:    "12h",
	}

	updateGlobalConfig(cli)

	assert.False(t, config.OverwriteFiles)
	assert.Equal(t, "debug", viper.GetString("log.level"))
	assert.True(t, viper.GetBool("datasette.enabled"))
	assert.Equal(t, "/tmp/books.db", viper.GetString("datasette.dbfile"))
	assert.False(t, viper.GetBool("cache.enabled"))
	assert.Equal(t, "/tmp/cache.db", viper.GetString("cache.dbfile"))
	assert.Equal(t, "12h", viper.GetString("cache.ttl"))
}

func TestUpdateGlobalConfigKeepsConfiguredValues(t *testing.T) {
	resetCmdState(t)
	viper.Set("cache.dbfile", "/data/cache.db")

	updateGlobalConfig(&CLI{})

	assert.True(t, config.OverwriteFiles)
	assert.False(t, viper.GetBool("datasette.enabled"))
	assert.True(t, viper.GetBool("cache.enabled"))
	assert.Equal(t, "/data/cache.db", viper.GetString("cache.dbfile"))
}

func TestStageCommandsUseConfiguredFiles(t *testing.T) {
	resetCmdState(t)

	tests := []struct {
		args    []string
		target  *stageFunc
		in, out string
	}{
		{[]string{"filter"}, &runFilter, "book_list01.csv", "book_list02.csv"},
		{[]string{"isbn"}, &runISBN, "book_list02.csv", "book_list03.csv"},
		{[]string{"wiki"}, &runWiki, "book_list03.csv", "book_list05.csv"},
		{[]string{"classify"}, &runClassify, "book_list05.csv", "book_list06.csv"},
		{[]string{"geocode"}, &runGeocode, "book_list06.csv", "book_list07.csv"},
		{[]string{"export"}, &runExport, "book_list07.csv", "book_list.json"},
		{[]string{"export", "-f", "in.csv", "-o", "out.json"}, &runExport, "in.csv", "out.json"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			got := recordStage(t, tt.target)
			_, ctx := parseCLI(t, tt.args...)
			require.NoError(t, ctx.Run())
			assert.Equal(t, [2]string{tt.in, tt.out}, *got)
		})
	}
}

func TestStageFlagsOverrideConfig(t *testing.T) {
	resetCmdState(t)
	recordStage(t, &runWiki)
	recordStage(t, &runClassify)
	recordStage(t, &runExport)
	recordStage(t, &runFilter)

	_, ctx := parseCLI(t, "wiki", "--workers", "4", "--title-fallback", "--author-page-fallback")
	require.NoError(t, ctx.Run())
	assert.Equal(t, 4, viper.GetInt("wiki.workers"))
	assert.True(t, viper.GetBool("wiki.title_fallback"))
	assert.True(t, viper.GetBool("wiki.author_page_fallback"))

	_, ctx = parseCLI(t, "classify", "--provider", "gemini", "--model", "gemini-1.5-pro")
	require.NoError(t, ctx.Run())
	assert.Equal(t, "gemini", viper.GetString("llm.provider"))
	assert.Equal(t, "gemini-1.5-pro", viper.GetString("llm.model"))

	_, ctx = parseCLI(t, "export", "--sentinel", "null")
	require.NoError(t, ctx.Run())
	assert.Equal(t, "null", viper.GetString("export.sentinel_mode"))

	_, ctx = parseCLI(t, "filter", "--prizes", "直木賞", "--prizes", "芥川賞")
	require.NoError(t, ctx.Run())
	assert.Equal(t, []string{"直木賞", "芥川賞"}, viper.GetStringSlice("filter.prizes"))
}

func TestRunCommand(t *testing.T) {
	resetCmdState(t)

	orig := runPipeline
	t.Cleanup(func() { runPipeline = orig })

	var gotFrom string
	var gotFiles pipeline.Files
	runPipeline = func(_ context.Context, f pipeline.Files, from string) ([]stage.Stats, error) {
		gotFiles, gotFrom = f, from
		return []stage.Stats{{Name: "wiki", Total: 1, Processed: 1}}, nil
	}

	_, ctx := parseCLI(t, "run", "--from", "wiki")
	require.NoError(t, ctx.Run())
	assert.Equal(t, "wiki", gotFrom)
	assert.Equal(t, "book_list03.csv", gotFiles.ISBN)
}

func TestServeCommand(t *testing.T) {
	resetCmdState(t)

	orig := serveAPI
	t.Cleanup(func() { serveAPI = orig })

	var gotAddr string
	serveAPI = func(_ context.Context, addr string) error {
		gotAddr = addr
		return nil
	}

	_, ctx := parseCLI(t, "serve")
	require.NoError(t, ctx.Run())
	assert.Equal(t, ":8000", gotAddr)

	_, ctx = parseCLI(t, "serve", "--addr", "127.0.0.1:9000")
	require.NoError(t, ctx.Run())
	assert.Equal(t, "127.0.0.1:9000", gotAddr)
}

func TestReportCommand(t *testing.T) {
	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	env.WriteCSV("book_list07.csv", []string{"受賞作", "latitude"}, []string{"火花", ""})

	_, ctx := parseCLI(t, "report", env.Path("book_list07.csv"))
	require.NoError(t, ctx.Run())

	_, ctx = parseCLI(t, "report", env.Path("missing.csv"))
	require.Error(t, ctx.Run())
}

func TestCacheInvalidateCommandParsing(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "cache", "invalidate", "ndl")
	assert.Equal(t, "ndl", cli.Cache.Invalidate.Source)
}

func TestCacheInvalidateCommand(t *testing.T) {
	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupTestCache(t, env)
	require.NoError(t, cache.ResetGlobalCache())
	t.Cleanup(func() { _ = cache.ResetGlobalCache() })

	_, ctx := parseCLI(t, "cache", "invalidate", "gsi")
	require.NoError(t, ctx.Run())

	_, ctx = parseCLI(t, "cache", "invalidate", "amazon")
	err := ctx.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache source")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"":        "INFO",
		"debug":   "DEBUG",
		"DEBUG":   "DEBUG",
		"warn":    "WARN",
		"error":   "ERROR",
		"invalid": "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
	require.NotPanics(t, func() { initLogging("debug") })
}
