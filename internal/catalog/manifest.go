package catalog

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ManifestVendor is one vendor's line in the manifest.
type ManifestVendor struct {
	Name   string `yaml:"name"`
	Models int    `yaml:"models"`
	Priced int    `yaml:"priced"`
}

// ManifestStats holds aggregate counts.
type ManifestStats struct {
	TotalVendors   int `yaml:"total_vendors"`
	TotalModels    int `yaml:"total_models"`
	PricedModels   int `yaml:"priced_models"`
	UnpricedModels int `yaml:"unpriced_models"`
	KnownWindows   int `yaml:"known_context_windows"`
}

// Manifest summarizes a snapshot for humans and CI logs.
type Manifest struct {
	Source      string           `yaml:"source"`
	Snapshot    string           `yaml:"snapshot"`
	UpdatedAt   string           `yaml:"updated_at"`
	GeneratedAt string           `yaml:"generated_at"`
	Currency    string           `yaml:"currency"`
	Unit        string           `yaml:"unit"`
	Vendors     []ManifestVendor `yaml:"vendors"`
	Stats       ManifestStats    `yaml:"stats"`
}

// BuildManifest aggregates s per vendor. Vendors are sorted by name.
func BuildManifest(s *Snapshot, sourceURL, snapshotPath string) *Manifest {
	priced := func(m Model) bool { return m.InputPrice != 0 || m.OutputPrice != 0 }

	counts := lo.CountValuesBy(s.Models, func(m Model) string { return m.Vendor })
	pricedCounts := lo.CountValuesBy(lo.Filter(s.Models, func(m Model, _ int) bool { return priced(m) }),
		func(m Model) string { return m.Vendor })

	names := lo.Keys(counts)
	sort.Strings(names)

	vendors := lo.Map(names, func(name string, _ int) ManifestVendor {
		return ManifestVendor{Name: name, Models: counts[name], Priced: pricedCounts[name]}
	})

	pricedTotal := lo.CountBy(s.Models, priced)

	return &Manifest{
		Source:      sourceURL,
		Snapshot:    snapshotPath,
		UpdatedAt:   s.UpdatedAt,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Currency:    Currency,
		Unit:        Unit,
		Vendors:     vendors,
		Stats: ManifestStats{
			TotalVendors:   len(vendors),
			TotalModels:    len(s.Models),
			PricedModels:   pricedTotal,
			UnpricedModels: len(s.Models) - pricedTotal,
			KnownWindows:   lo.CountBy(s.Models, func(m Model) bool { return m.ContextWindow.Known() }),
		},
	}
}

// WriteManifest writes the manifest for s to path as YAML.
func WriteManifest(path string, s *Snapshot, sourceURL, snapshotPath string) error {
	data, err := yaml.Marshal(BuildManifest(s, sourceURL, snapshotPath))
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	header := "# Model price manifest\n# Auto-generated by modelprices - DO NOT EDIT MANUALLY\n\n"
	if err := os.WriteFile(path, []byte(header+string(data)), 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}
