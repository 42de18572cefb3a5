package record

import (
	"testing"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRow(t *testing.T) {
	table := csvutil.NewTable([]string{ColTitle, ColAuthor, ColPrizes, ColISBN, ColFacts, ColLatitude, ColLongitude, "calil"})
	table.AppendRow([]string{" 火花 ", "又吉直樹", "芥川賞 | 本屋大賞", "416390230", `{"出版社":"文藝春秋"}`, "35.68", "139.76", "x"})
	table.AppendRow([]string{"羊と鋼の森", "宮下奈都", "", "", "not json", "", "139.0", ""})

	r := FromRow(table, 0)
	assert.Equal(t, "火花", r.Title)
	assert.Equal(t, []string{"芥川賞", "本屋大賞"}, r.Prizes)
	assert.Equal(t, "416390230", r.ISBN)
	assert.Equal(t, map[string]string{"出版社": "文藝春秋"}, r.Facts)
	require.NotNil(t, r.Coordinates)
	assert.Equal(t, Coordinates{Lat: 35.68, Lon: 139.76}, *r.Coordinates)

	r = FromRow(table, 1)
	assert.Nil(t, r.Prizes)
	assert.Nil(t, r.Facts)
	assert.Nil(t, r.Coordinates, "half-filled coordinates are treated as missing")
}

func TestSynopsisLegacyColumn(t *testing.T) {
	table := csvutil.NewTable([]string{ColLegacyWiki})
	table.AppendRow([]string{`{"概要":" 東京を舞台にした物語 ","URL":"https://ja.wikipedia.org/wiki/x"}`})
	table.AppendRow([]string{"{}"})
	table.AppendRow([]string{"{broken"})

	assert.Equal(t, "東京を舞台にした物語", Synopsis(table, 0))
	assert.Equal(t, "", Synopsis(table, 1))
	assert.Equal(t, "", Synopsis(table, 2))

	table.Set(0, ColSynopsis, "新しい概要")
	assert.Equal(t, "新しい概要", Synopsis(table, 0))
}

func TestSetCoordinatesAndFacts(t *testing.T) {
	table := csvutil.NewTable([]string{ColTitle})
	table.AppendRow([]string{"a"})

	SetCoordinates(table, 0, &Coordinates{Lat: 43.0621, Lon: 141.3544})
	assert.Equal(t, "43.0621", table.Get(0, ColLatitude))
	assert.Equal(t, "141.3544", table.Get(0, ColLongitude))

	SetCoordinates(table, 0, nil)
	assert.Equal(t, "", table.Get(0, ColLatitude))

	require.NoError(t, SetFacts(table, 0, map[string]string{"ISBN": "4-10-1"}))
	assert.Equal(t, `{"ISBN":"4-10-1"}`, table.Get(0, ColFacts))
	require.NoError(t, SetFacts(table, 0, nil))
	assert.Equal(t, "", table.Get(0, ColFacts))
}

func TestFromRowNonFiniteCoordinates(t *testing.T) {
	table := csvutil.NewTable([]string{ColTitle, ColLatitude, ColLongitude})
	table.AppendRow([]string{"a", "nan", "nan"})
	table.AppendRow([]string{"b", "NaN", "139.7"})
	table.AppendRow([]string{"c", "35.6", "Inf"})
	table.AppendRow([]string{"d", "-inf", "139.7"})

	for i := 0; i < table.Len(); i++ {
		assert.Nil(t, FromRow(table, i).Coordinates, table.Get(i, ColTitle))
	}
}
