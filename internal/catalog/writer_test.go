package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteEndToEndRecord(t *testing.T) {
	rc := rawCatalog(t, `{"openai/gpt-4": {"input_cost_per_token": 0.00003, "output_cost_per_token": 0.00006, "max_tokens": 8192}}`)
	s := FormatAt(rc, time.Date(2026, 10, 19, 8, 30, 0, 0, time.Local))

	path := filepath.Join(t.TempDir(), "model_prices.json")
	if err := Write(s, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := `{
  "updated_at": "2026-10-19T08:30:00",
  "total_models": 1,
  "models": [
    {
      "vendor": "openai",
      "model": "gpt-4",
      "full_name": "openai/gpt-4",
      "input_price": 30.0,
      "output_price": 60.0,
      "context_window": 8192,
      "currency": "USD",
      "unit": "per_1M_tokens"
    }
  ]
}`
	if string(data) != want {
		t.Errorf("unexpected file contents:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_prices.json")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 4096), 0o644); err != nil {
		t.Fatal(err)
	}

	s := FormatAt(rawCatalog(t, `{}`), time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local))
	if err := Write(s, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "x") {
		t.Error("previous contents should be truncated")
	}
	if !strings.Contains(string(data), `"models": []`) {
		t.Errorf("empty snapshot should have an empty models array, got:\n%s", data)
	}
}

func TestEncodeWritesNonASCIIAndHTMLLiterally(t *testing.T) {
	s := FormatAt(rawCatalog(t, `{"zhipu/模型<beta>&co": {"max_tokens": "约 128k"}}`), time.Now())

	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{`"model": "模型<beta>&co"`, `"context_window": "约 128k"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("output should not end with a newline")
	}
}

func TestWriteFailsForMissingDirectory(t *testing.T) {
	s := FormatAt(rawCatalog(t, `{}`), time.Now())
	path := filepath.Join(t.TempDir(), "missing", "model_prices.json")
	if err := Write(s, path); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	rc := rawCatalog(t, `{"openai/gpt-4": {"input_cost_per_token": 0.00003, "max_tokens": 8192}, "x": {}}`)
	s := FormatAt(rc, time.Now())

	path := filepath.Join(t.TempDir(), "model_prices.json")
	if err := Write(s, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TotalModels != 2 || len(loaded.Models) != 2 {
		t.Fatalf("loaded %d/%d models", loaded.TotalModels, len(loaded.Models))
	}
	if loaded.Models[0].InputPrice != 30 {
		t.Errorf("InputPrice = %v, want 30", loaded.Models[0].InputPrice)
	}
	if n, ok := loaded.Models[0].ContextWindow.TokenCount(); !ok || n != 8192 {
		t.Errorf("ContextWindow = %v", loaded.Models[0].ContextWindow)
	}
	if !loaded.Models[1].ContextWindow.IsUnknown() {
		t.Errorf("ContextWindow = %v, want N/A", loaded.Models[1].ContextWindow)
	}
}
