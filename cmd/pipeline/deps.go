package pipeline

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/HazeMiya/ai-2024/internal/config"
	"github.com/HazeMiya/ai-2024/internal/datastore"
	"github.com/HazeMiya/ai-2024/internal/geocode"
	"github.com/HazeMiya/ai-2024/internal/isbn"
	"github.com/HazeMiya/ai-2024/internal/llm"
	"github.com/HazeMiya/ai-2024/internal/ratelimit"
	"github.com/HazeMiya/ai-2024/internal/wiki"
)

// Constructors for the external services. Tests replace them with fakes.
var (
	newISBNSources = defaultISBNSources
	newWikiAPI     = defaultWikiAPI
	newOracle      = defaultOracle
	newLocator     = defaultLocator
	newStore       = defaultStore
)

func defaultISBNSources() []isbn.Source {
	return []isbn.Source{
		isbn.NewNDL(),
		isbn.NewGoogleBooks(config.GoogleBooksAPIKey),
	}
}

func defaultWikiAPI() wiki.API {
	limiter := ratelimit.NewWithBurst("wikipedia", viper.GetFloat64("wiki.rate_per_second"), viper.GetInt("wiki.workers"))
	return wiki.NewClient(viper.GetString("wiki.lang"), wiki.WithRateLimiter(limiter))
}

func defaultOracle() (llm.Oracle, error) {
	provider := viper.GetString("llm.provider")
	key := config.AnthropicAPIKey
	if provider == llm.ProviderGemini {
		key = config.GeminiAPIKey
	}
	return llm.New(llm.Config{
		Provider: provider,
		Model:    viper.GetString("llm.model"),
		APIKey:   key,
	})
}

func defaultLocator() geocode.Locator {
	return geocode.NewGSI()
}

func defaultStore() (datastore.Store, error) {
	switch mode := viper.GetString("datasette.mode"); mode {
	case "", "local":
		return datastore.NewSQLiteStore(viper.GetString("datasette.dbfile")), nil
	case "remote":
		remoteURL := viper.GetString("datasette.remote_url")
		if remoteURL == "" {
			return nil, fmt.Errorf("datasette.remote_url is required in remote mode")
		}
		return datastore.NewDatasetteClient(
			remoteURL,
			viper.GetString("datasette.database"),
			viper.GetString("datasette.api_token"),
			nil,
		), nil
	default:
		return nil, fmt.Errorf("unknown datasette mode %q (want local or remote)", mode)
	}
}

// wikiOptions reads the wiki.* keys.
func wikiOptions() (wiki.Options, error) {
	opts := wiki.DefaultOptions()
	opts.TopK = viper.GetInt("wiki.top_k")
	opts.RequireAuthor = viper.GetBool("wiki.require_author")
	opts.TitleFallback = viper.GetBool("wiki.title_fallback")
	opts.AuthorPageFallback = viper.GetBool("wiki.author_page_fallback")
	opts.Infobox = viper.GetBool("wiki.infobox")
	opts.SummaryMode = viper.GetString("wiki.summary_mode")
	opts.SummaryMaxRunes = viper.GetInt("wiki.summary_max_runes")

	if path := viper.GetString("wiki.rules_file"); path != "" {
		rules, err := wiki.LoadRules(path)
		if err != nil {
			return opts, err
		}
		opts.Rules = rules
	}
	if keyword := viper.GetString("wiki.keyword"); keyword != "" {
		opts.Rules.SearchKeyword = keyword
	}
	return opts, nil
}
