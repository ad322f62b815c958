package validate

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/everstacklabs/modelprices/internal/catalog"
)

// Severity classifies validation issues.
type Severity int

const (
	SeverityError   Severity = iota // Fails the validate command
	SeverityWarning                 // Reported only
)

// Issue represents a single problem found in a snapshot.
type Issue struct {
	Severity Severity
	Model    string
	Field    string
	Message  string
}

func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s: %s", sev, i.Model, i.Field, i.Message)
}

// Result holds all validation issues.
type Result struct {
	Issues []Issue
}

// HasErrors returns true if there are any blocking errors.
func (r *Result) HasErrors() bool {
	return lo.SomeBy(r.Issues, func(i Issue) bool { return i.Severity == SeverityError })
}

// Errors returns only error-severity issues.
func (r *Result) Errors() []Issue {
	return lo.Filter(r.Issues, func(i Issue, _ int) bool { return i.Severity == SeverityError })
}

// Warnings returns only warning-severity issues.
func (r *Result) Warnings() []Issue {
	return lo.Filter(r.Issues, func(i Issue, _ int) bool { return i.Severity == SeverityWarning })
}

func (r *Result) add(sev Severity, model, field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{sev, model, field, fmt.Sprintf(format, args...)})
}

// ValidateModel checks one record against the snapshot's output contract.
func ValidateModel(m *catalog.Model) *Result {
	r := &Result{}
	name := m.FullName
	if name == "" {
		name = "(empty)"
		r.add(SeverityError, name, "full_name", "required field is empty")
	}

	// vendor and model must be derivable from full_name
	if m.FullName != "" {
		vendor, model := catalog.SplitIdentifier(m.FullName)
		if m.Vendor != vendor {
			r.add(SeverityError, name, "vendor", "got %q, full_name implies %q", m.Vendor, vendor)
		}
		if m.Model != model {
			r.add(SeverityError, name, "model", "got %q, full_name implies %q", m.Model, model)
		}
	}

	if m.Currency != catalog.Currency {
		r.add(SeverityError, name, "currency", "got %q, want %q", m.Currency, catalog.Currency)
	}
	if m.Unit != catalog.Unit {
		r.add(SeverityError, name, "unit", "got %q, want %q", m.Unit, catalog.Unit)
	}

	if m.InputPrice < 0 {
		r.add(SeverityWarning, name, "input_price", "negative value %v", float64(m.InputPrice))
	}
	if m.OutputPrice < 0 {
		r.add(SeverityWarning, name, "output_price", "negative value %v", float64(m.OutputPrice))
	}

	if n, ok := m.ContextWindow.TokenCount(); ok && n < 0 {
		r.add(SeverityWarning, name, "context_window", "negative value %d", n)
	} else if !ok && !m.ContextWindow.IsUnknown() {
		r.add(SeverityWarning, name, "context_window", "non-integer value %s", m.ContextWindow)
	}

	return r
}

// ValidateSnapshot checks the snapshot header and every record.
func ValidateSnapshot(s *catalog.Snapshot) *Result {
	r := &Result{}

	if s.UpdatedAt == "" {
		r.add(SeverityError, "snapshot", "updated_at", "required field is empty")
	}
	if s.TotalModels != len(s.Models) {
		r.add(SeverityError, "snapshot", "total_models", "is %d but models has %d entries", s.TotalModels, len(s.Models))
	}

	seen := make(map[string]bool, len(s.Models))
	for i := range s.Models {
		m := &s.Models[i]
		if m.FullName != "" && seen[m.FullName] {
			r.add(SeverityError, m.FullName, "full_name", "duplicate entry")
		}
		seen[m.FullName] = true
		r.Issues = append(r.Issues, ValidateModel(m).Issues...)
	}

	return r
}

// FormatResult formats validation results for display.
func FormatResult(r *Result) string {
	if len(r.Issues) == 0 {
		return "Validation passed: no issues found."
	}

	var b strings.Builder
	errors := r.Errors()
	warnings := r.Warnings()

	if len(errors) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(errors))
		for _, e := range errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintf(&b, "Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}

	return b.String()
}
