package wiki

import "fmt"

// Status is the outcome of one lookup.
type Status string

const (
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Reason explains a not_found result.
type Reason string

const (
	ReasonNoResults Reason = "no_results"
	ReasonNoMatch   Reason = "no_match"
)

// Source tells which page a found synopsis came from.
type Source string

const (
	SourceArticle    Source = "article"
	SourceAuthorPage Source = "author_page"
)

// Result is the outcome of looking up one (title, author) pair.
type Result struct {
	Status    Status
	Synopsis  string
	Facts     map[string]string
	URL       string
	PageTitle string
	Source    Source
	Reason    Reason
	Message   string
}

func notFound(reason Reason) Result {
	return Result{Status: StatusNotFound, Reason: reason}
}

func errorResult(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}

// Found reports whether the lookup produced a synopsis.
func (r Result) Found() bool {
	return r.Status == StatusFound
}

// Note is the human-readable remark stored next to the result.
func (r Result) Note() string {
	switch r.Status {
	case StatusNotFound:
		if r.Reason == ReasonNoResults {
			return "検索結果が見つかりませんでした"
		}
		return "本の情報が見つかりませんでした"
	case StatusError:
		return fmt.Sprintf("エラー: %s", r.Message)
	}
	if r.Source == SourceAuthorPage {
		return "この情報は著者のページから抽出されました"
	}
	return ""
}
