// Package classify extracts genre, season, protagonist age, setting and a
// one-line summary from a synopsis with a text-generation oracle.
package classify

import "fmt"

// Closed answer sets offered to the oracle.
var (
	Genres  = []string{"恋愛小説", "ミステリー", "SF", "ファンタジー", "歴史小説", "文学", "青春小説", "ホラー", "その他"}
	Seasons = []string{"春", "夏", "秋", "冬", "不明"}
)

const promptTemplate = `次の文章から、以下の情報を抽出してください：

1. ジャンル（以下から最も近いものを1つ選んでください）：
- 恋愛小説
- ミステリー
- SF
- ファンタジー
- 歴史小説
- 文学
- 青春小説
- ホラー
- その他

2. 季節（以下から1つ選んでください。備考など入れないでください。複数の季節がある場合は、最も重要な季節を選択）：
- 春
- 夏
- 秋
- 冬
- 不明

3. 主人公の年齢（以下の形式をかならず使用してください）：
- 12歳
- 14歳~16歳
- 高校生
- 大学生
- 80代の場合は、80歳~89歳

4. 主な舞台となる場所（具体的な都市名や地名を1つ。例：東京、京都、札幌など）
※架空の場所の場合は「架空」と記載
※場所が特定できない場合は「不明」と記載

5. 要約
一行程度で、本の内容を要約してください。

フォーマット：
ジャンル：[上記の選択肢から1つ]
季節：[上記の選択肢から1つ]
主人公の年齢：[抽出結果]
場所：[具体的な都市名/架空/不明]
本の要約：[本の要約]

文章:
%s
`

// BuildPrompt embeds synopsis in the extraction prompt.
func BuildPrompt(synopsis string) string {
	return fmt.Sprintf(promptTemplate, synopsis)
}
