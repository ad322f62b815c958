package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Model is one normalized price record in the snapshot.
// Field order and names are part of the output contract.
type Model struct {
	Vendor        string        `json:"vendor"`
	Model         string        `json:"model"`
	FullName      string        `json:"full_name"`
	InputPrice    Price         `json:"input_price"`
	OutputPrice   Price         `json:"output_price"`
	ContextWindow ContextWindow `json:"context_window"`
	Currency      string        `json:"currency"`
	Unit          string        `json:"unit"`
}

// Snapshot is the whole output document produced by one run.
type Snapshot struct {
	UpdatedAt   string  `json:"updated_at"`
	TotalModels int     `json:"total_models"`
	Models      []Model `json:"models"`
}

// Price is a USD amount per million tokens.
//
// A zero price is written as the integer 0. Any other value is written with
// at least one fractional digit (30.0, 2.5) and switches to exponent form
// outside 1e-4 <= |x| < 1e16.
type Price float64

func (p Price) MarshalJSON() ([]byte, error) {
	f := float64(p)
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return []byte("null"), nil
	case f == 0:
		return []byte("0"), nil
	}
	return []byte(formatFloat(f)), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Price(f)
	return nil
}

func formatFloat(f float64) string {
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// NotAvailable is written in place of a context window the source omits.
const NotAvailable = "N/A"

type windowKind uint8

const (
	windowUnknown windowKind = iota
	windowTokens
	windowVerbatim
)

// ContextWindow is either a token count, unknown (source omitted it), or a
// value the source supplied that is not an integer, kept as given.
// The zero value is unknown.
type ContextWindow struct {
	kind   windowKind
	tokens int64
	raw    json.RawMessage
}

// Tokens returns a known context window of n tokens.
func Tokens(n int64) ContextWindow {
	return ContextWindow{kind: windowTokens, tokens: n}
}

// UnknownWindow returns the context window used when the source omits one.
func UnknownWindow() ContextWindow {
	return ContextWindow{}
}

// WindowFromJSON interprets a max_tokens value that is present in the source.
// Integers become Tokens; anything else (null, strings, fractions) is kept
// verbatim.
func WindowFromJSON(raw json.RawMessage) ContextWindow {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return UnknownWindow()
	}
	if n, err := strconv.ParseInt(string(trimmed), 10, 64); err == nil {
		return Tokens(n)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return UnknownWindow()
	}
	return ContextWindow{kind: windowVerbatim, raw: buf.Bytes()}
}

// Known reports whether the window is a token count.
func (w ContextWindow) Known() bool { return w.kind == windowTokens }

// IsUnknown reports whether the source omitted the window.
func (w ContextWindow) IsUnknown() bool { return w.kind == windowUnknown }

// TokenCount returns the token count and whether it is known.
func (w ContextWindow) TokenCount() (int64, bool) {
	return w.tokens, w.kind == windowTokens
}

func (w ContextWindow) String() string {
	switch w.kind {
	case windowTokens:
		return strconv.FormatInt(w.tokens, 10)
	case windowVerbatim:
		return string(w.raw)
	default:
		return NotAvailable
	}
}

func (w ContextWindow) MarshalJSON() ([]byte, error) {
	switch w.kind {
	case windowTokens:
		return []byte(strconv.FormatInt(w.tokens, 10)), nil
	case windowVerbatim:
		return w.raw, nil
	default:
		return json.Marshal(NotAvailable)
	}
}

func (w *ContextWindow) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s == NotAvailable {
		*w = UnknownWindow()
		return nil
	}
	*w = WindowFromJSON(data)
	return nil
}
