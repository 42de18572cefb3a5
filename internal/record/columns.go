package record

// Column names shared by the stage CSV files.
const (
	ColTitle         = "受賞作"
	ColAuthor        = "著者"
	ColPrizes        = "賞タイトル"
	ColAuthorWork    = "著者__受賞・最終候補作"
	ColISBN          = "ISBN10"
	ColCalil         = "calil"
	ColImageURL      = "ImageURL"
	ColSynopsis      = "概要"
	ColWikipediaURL  = "WikipediaURL"
	ColFacts         = "基本情報"
	ColWikiStatus    = "Wikipedia状態"
	ColWikiNote      = "Wikipedia備考"
	ColLegacyWiki    = "Wikipedia情報"
	ColGenre         = "ジャンル"
	ColSeason        = "季節"
	ColAge           = "主人公の年齢"
	ColSetting       = "場所"
	ColSummary       = "本の要約"
	ColCharacters    = "主人公の属性"
	ColClassifyError = "LLM処理エラー"
	ColLatitude      = "latitude"
	ColLongitude     = "longitude"
)

// PrizeSeparator joins the prize names merged into one record.
const PrizeSeparator = " | "

// Placeholder values the classifier uses for settings it cannot pin down.
const (
	SettingUnknown   = "不明"
	SettingFictional = "架空"
)
