package export

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/datastore"
	"github.com/HazeMiya/ai-2024/internal/fileutil"
	"github.com/HazeMiya/ai-2024/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		allowed      Set
		placeholders bool
		want         string
		wantOK       bool
	}{
		{name: "blank", raw: "", allowed: Seasons, placeholders: true},
		{name: "whitespace", raw: "  ", allowed: Seasons, placeholders: true},
		{name: "fictional setting", raw: "架空", allowed: Seasons, placeholders: true},
		{name: "allowed season", raw: "夏", allowed: Seasons, placeholders: true, want: "夏", wantOK: true},
		{name: "trimmed", raw: " 冬 ", allowed: Seasons, want: "冬", wantOK: true},
		{name: "outside allow-list", raw: "梅雨", allowed: Seasons},
		{name: "unknown season", raw: "不明", allowed: Seasons},
		{name: "free text location", raw: "大阪", placeholders: true, want: "大阪", wantOK: true},
		{name: "placeholder location", raw: "不明", placeholders: true},
		{name: "english placeholder", raw: "Unknown", placeholders: true},
		{name: "placeholder kept when disabled", raw: "不明", want: "不明", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Validate(tt.raw, tt.allowed, tt.placeholders)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSentinelMode(t *testing.T) {
	for in, want := range map[string]SentinelMode{"": SentinelNaN, "nan": SentinelNaN, "EMPTY": SentinelEmpty, " null ": SentinelNull} {
		got, err := ParseSentinelMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSentinelMode("none")
	require.Error(t, err)
}

func finalTable() *csvutil.Table {
	t := csvutil.NewTable([]string{
		record.ColTitle, record.ColAuthor, record.ColPrizes, record.ColISBN, record.ColImageURL,
		record.ColGenre, record.ColSeason, record.ColAge, record.ColSetting, record.ColSummary,
		record.ColCharacters, record.ColLatitude, record.ColLongitude,
	})
	t.AppendRow([]string{"火花", "又吉直樹", "芥川賞", "4163902309", "https://img/1.jpg",
		"文学", "夏", "20代", "東京", "芸人の青春。", "芸人", "35.6895", "139.6917"})
	t.AppendRow([]string{"架空の町", "作者", "直木賞 | 本屋大賞", "", "",
		"純文学", "不明", "", "架空", "", "", "", ""})
	return t
}

func TestBuildSentinelModes(t *testing.T) {
	tests := []struct {
		mode SentinelMode
		want string
	}{
		{SentinelNaN, `"nan"`},
		{SentinelEmpty, `""`},
		{SentinelNull, `null`},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			books, stats := Build(finalTable(), Options{Mode: tt.mode, Placeholders: true})
			require.Len(t, books, 2)
			assert.Equal(t, 2, stats.Books)

			data, err := json.Marshal(books)
			require.NoError(t, err)
			var decoded []map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(data, &decoded))

			full, missing := decoded[0], decoded[1]
			assert.JSONEq(t, `"夏"`, string(full["season"]))
			assert.JSONEq(t, `35.6895`, string(full["latitude"]))
			assert.JSONEq(t, `139.6917`, string(full["longitude"]))

			for _, key := range []string{"id", "image", "genre", "season", "location", "summary", "characters_age", "characters"} {
				assert.JSONEq(t, tt.want, string(missing[key]), key)
			}
			assert.JSONEq(t, `"直木賞 | 本屋大賞"`, string(missing["award"]))
			assert.Equal(t, "null", string(missing["latitude"]), "coordinates are null in every mode")
			assert.Equal(t, "null", string(missing["longitude"]))
			assert.Equal(t, 1, stats.Sentinels["genre"])
			assert.Equal(t, 1, stats.Sentinels["latitude"])
		})
	}
}

func TestBuildNaNCoordinatesAreNull(t *testing.T) {
	table := finalTable()
	table.Set(0, record.ColLatitude, "nan")
	table.Set(0, record.ColLongitude, "nan")

	books, stats := Build(table, Options{Mode: SentinelNaN, Placeholders: true})
	require.Len(t, books, 2)
	assert.Nil(t, books[0].Latitude)
	assert.Nil(t, books[0].Longitude)
	assert.Equal(t, 2, stats.Sentinels["latitude"])

	data, err := fileutil.MarshalJSON(books)
	require.NoError(t, err)
	var decoded []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "null", string(decoded[0]["latitude"]))
	assert.Equal(t, "null", string(decoded[0]["longitude"]))
}

func TestBookKeySet(t *testing.T) {
	books, _ := Build(finalTable(), Options{Mode: SentinelNaN})
	data, err := json.Marshal(books[0])
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{
		"author", "award", "characters", "characters_age", "genre", "id", "image",
		"latitude", "location", "longitude", "season", "summary", "title",
	}, keys)
}

func TestPlaceholdersDisabledKeepsLocation(t *testing.T) {
	books, _ := Build(finalTable(), Options{Mode: SentinelNaN, Placeholders: false})
	assert.Equal(t, String("架空"), books[1].Location)
	assert.Equal(t, Sentinel(SentinelNaN), books[1].Season, "不明 is outside the season allow-list")
}

func TestTextRoundTrip(t *testing.T) {
	var got struct {
		A Text `json:"a"`
		B Text `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":"夏"}`), &got))
	assert.True(t, got.A.Null)
	assert.Equal(t, String("夏"), got.B)
}

func TestWriteStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "books.db")
	books, _ := Build(finalTable(), Options{Mode: SentinelNull, Placeholders: true})

	require.NoError(t, WriteStore(ctx, datastore.NewSQLiteStore(dbPath), books))
	// a second export replaces the first
	require.NoError(t, WriteStore(ctx, datastore.NewSQLiteStore(dbPath), books))

	store := datastore.NewSQLiteStore(dbPath)
	require.NoError(t, store.Connect(ctx))
	defer func() { _ = store.Close() }()
	n, err := store.Count(ctx, BooksTable)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRows(t *testing.T) {
	books, _ := Build(finalTable(), Options{Mode: SentinelNull, Placeholders: true})
	rows := Rows(books)
	require.Len(t, rows, 2)
	assert.Equal(t, "火花", rows[0]["title"])
	assert.Equal(t, 35.6895, rows[0]["latitude"])
	assert.Nil(t, rows[1]["genre"])
	assert.Nil(t, rows[1]["latitude"])
	assert.Len(t, rows[0], 13)
}
