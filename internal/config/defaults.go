package config

import "github.com/spf13/viper"

// DefaultPrizes is the allow-list of prize names kept by the filter stage.
var DefaultPrizes = []string{
	"直木賞",
	"芥川賞",
	"本屋大賞",
	"江戸川乱歩賞",
	"山本周五郎賞",
	"このミステリーがすごい！",
}

// SetDefaults registers every pipeline default with viper.
func SetDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("files.raw", "book_list01.csv")
	viper.SetDefault("files.filtered", "book_list02.csv")
	viper.SetDefault("files.isbn", "book_list03.csv")
	viper.SetDefault("files.wiki", "book_list05.csv")
	viper.SetDefault("files.classified", "book_list06.csv")
	viper.SetDefault("files.geocoded", "book_list07.csv")
	viper.SetDefault("files.json", "book_list.json")

	viper.SetDefault("filter.prizes", DefaultPrizes)

	viper.SetDefault("isbn.rate_per_second", 1.0)

	viper.SetDefault("wiki.lang", "ja")
	viper.SetDefault("wiki.workers", 20)
	viper.SetDefault("wiki.top_k", 3)
	viper.SetDefault("wiki.keyword", "小説")
	viper.SetDefault("wiki.require_author", true)
	viper.SetDefault("wiki.title_fallback", false)
	viper.SetDefault("wiki.author_page_fallback", false)
	viper.SetDefault("wiki.summary_mode", "first_line")
	viper.SetDefault("wiki.summary_max_runes", 500)
	viper.SetDefault("wiki.infobox", true)
	viper.SetDefault("wiki.rules_file", "")
	viper.SetDefault("wiki.rate_per_second", 0.0)

	viper.SetDefault("llm.provider", "anthropic")
	viper.SetDefault("llm.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.retry_delay", "2s")
	viper.SetDefault("llm.rate_per_second", 1.0)

	viper.SetDefault("geocode.rate_per_second", 1.0)

	viper.SetDefault("export.sentinel_mode", "nan")
	viper.SetDefault("export.treat_placeholders", true)

	viper.SetDefault("datasette.enabled", false)
	viper.SetDefault("datasette.mode", "local")
	viper.SetDefault("datasette.dbfile", "./books.db")
	viper.SetDefault("datasette.remote_url", "")
	viper.SetDefault("datasette.database", "books")
	viper.SetDefault("datasette.api_token", "")

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h")

	viper.SetDefault("serve.addr", ":8000")
}
