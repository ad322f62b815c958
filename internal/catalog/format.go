package catalog

import (
	"log/slog"
	"strings"
	"time"

	"github.com/everstacklabs/modelprices/internal/source"
)

const (
	Currency      = "USD"
	Unit          = "per_1M_tokens"
	UnknownVendor = "unknown"

	tokensPerUnit = 1_000_000
)

// Source field names read from each catalog entry.
const (
	FieldInputCost  = "input_cost_per_token"
	FieldOutputCost = "output_cost_per_token"
	FieldMaxTokens  = "max_tokens"
)

// Format normalizes every entry of raw, in order, stamping the snapshot with
// the current local time.
func Format(raw *source.RawCatalog) *Snapshot {
	return FormatAt(raw, time.Now())
}

// FormatAt is Format with an explicit timestamp.
func FormatAt(raw *source.RawCatalog, now time.Time) *Snapshot {
	s := &Snapshot{
		UpdatedAt: Timestamp(now),
		Models:    make([]Model, 0, raw.Len()),
	}

	for id, md := range raw.All() {
		s.Models = append(s.Models, Normalize(id, md))
	}
	s.TotalModels = len(s.Models)

	slog.Debug("catalog formatted", "models", s.TotalModels)
	return s
}

// Normalize converts one catalog entry. It never fails: fields it cannot
// read fall back to their defaults.
func Normalize(id string, md source.Metadata) Model {
	vendor, model := SplitIdentifier(id)
	fields := md.Fields()

	cw := UnknownWindow()
	if raw, ok := fields.Raw(FieldMaxTokens); ok {
		cw = WindowFromJSON(raw)
	}

	return Model{
		Vendor:        vendor,
		Model:         model,
		FullName:      id,
		InputPrice:    PerMillion(fields.Cost(FieldInputCost)),
		OutputPrice:   PerMillion(fields.Cost(FieldOutputCost)),
		ContextWindow: cw,
		Currency:      Currency,
		Unit:          Unit,
	}
}

// SplitIdentifier splits "vendor/model[/...]" on the first slash. An
// identifier without a slash belongs to UnknownVendor.
func SplitIdentifier(id string) (vendor, model string) {
	parts := strings.Split(id, "/")
	if len(parts) > 1 {
		return parts[0], strings.Join(parts[1:], "/")
	}
	return UnknownVendor, id
}

// PerMillion scales a per-token cost. A zero cost stays exactly zero.
func PerMillion(perToken float64) Price {
	if perToken == 0 {
		return 0
	}
	return Price(perToken * tokensPerUnit)
}

// Timestamp renders t as a local ISO-8601 time without offset, with
// microseconds only when they are non-zero.
func Timestamp(t time.Time) string {
	t = t.Local()
	if t.Nanosecond()/1000 == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}
