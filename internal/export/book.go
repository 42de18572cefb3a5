package export

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SentinelMode selects how missing or invalid values are serialized.
type SentinelMode string

const (
	// SentinelNaN writes the literal string "nan".
	SentinelNaN SentinelMode = "nan"
	// SentinelEmpty writes an empty string.
	SentinelEmpty SentinelMode = "empty"
	// SentinelNull writes JSON null.
	SentinelNull SentinelMode = "null"
)

// ParseSentinelMode validates a configured sentinel mode. Blank means SentinelNaN.
func ParseSentinelMode(s string) (SentinelMode, error) {
	switch m := SentinelMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SentinelNaN, nil
	case SentinelNaN, SentinelEmpty, SentinelNull:
		return m, nil
	default:
		return "", fmt.Errorf("unknown sentinel mode %q (want nan, empty or null)", s)
	}
}

// Text is an exported string field that may be null.
type Text struct {
	Value string
	Null  bool
}

// String returns s as a non-null Text.
func String(s string) Text {
	return Text{Value: s}
}

// Sentinel returns the placeholder Text for mode.
func Sentinel(mode SentinelMode) Text {
	switch mode {
	case SentinelNull:
		return Text{Null: true}
	case SentinelEmpty:
		return Text{}
	default:
		return Text{Value: string(SentinelNaN)}
	}
}

// MarshalJSON implements json.Marshaler.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.Null {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Text{Null: true}
		return nil
	}
	t.Null = false
	return json.Unmarshal(data, &t.Value)
}

// sqlValue is the value stored in the books table.
func (t Text) sqlValue() any {
	if t.Null {
		return nil
	}
	return t.Value
}

// Book is one element of the exported JSON array.
type Book struct {
	ID            Text     `json:"id"`
	Title         Text     `json:"title"`
	Author        Text     `json:"author"`
	Award         Text     `json:"award"`
	Location      Text     `json:"location"`
	Season        Text     `json:"season"`
	Genre         Text     `json:"genre"`
	Image         Text     `json:"image"`
	Summary       Text     `json:"summary"`
	CharactersAge Text     `json:"characters_age"`
	Characters    Text     `json:"characters"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}
