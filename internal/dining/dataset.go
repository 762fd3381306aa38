// Package dining holds the campus dining hours table and the rules that
// flag venues a student wants to avoid.
package dining

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

//go:embed data/campus.yaml
var campusYAML []byte

// Location is a venue as stored in the dataset. Avoid flags are derived
// per request and are not part of it.
type Location struct {
	Name        string
	Description string
	IsOnCampus  bool
	OpenWindows []schedule.RecurringWindow
}

// Dataset is an immutable list of venues.
type Dataset struct {
	locations []Location
}

// NewDataset copies locs into a dataset.
func NewDataset(locs []Location) *Dataset {
	cp := make([]Location, len(locs))
	for i, l := range locs {
		l.OpenWindows = append([]schedule.RecurringWindow(nil), l.OpenWindows...)
		cp[i] = l
	}
	return &Dataset{locations: cp}
}

// Locations returns a copy of the venues in authoring order.
func (d *Dataset) Locations() []Location {
	return NewDataset(d.locations).locations
}

// Len is the number of venues.
func (d *Dataset) Len() int { return len(d.locations) }

// Find looks up a venue by exact name, ignoring case.
func (d *Dataset) Find(name string) (Location, bool) {
	for _, l := range d.locations {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Location{}, false
}

type fileLocation struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	OnCampus    *bool  `yaml:"on_campus"`
	Hours       string `yaml:"hours"`
}

type fileDataset struct {
	Locations []fileLocation `yaml:"locations"`
}

// DefaultDataset is the built-in campus table.
func DefaultDataset() *Dataset {
	ds, err := Load(bytes.NewReader(campusYAML))
	if err != nil {
		panic(fmt.Sprintf("dining: built-in dataset: %v", err))
	}
	return ds
}

// Load reads a YAML dataset. Venues default to on campus.
func Load(r io.Reader) (*Dataset, error) {
	var f fileDataset
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode dining dataset: %w", err)
	}
	if len(f.Locations) == 0 {
		return nil, fmt.Errorf("dining dataset has no locations")
	}

	locs := make([]Location, 0, len(f.Locations))
	for i, fl := range f.Locations {
		if strings.TrimSpace(fl.Name) == "" {
			return nil, fmt.Errorf("dining location %d has no name", i)
		}
		onCampus := true
		if fl.OnCampus != nil {
			onCampus = *fl.OnCampus
		}
		locs = append(locs, Location{
			Name:        strings.TrimSpace(fl.Name),
			Description: strings.TrimSpace(fl.Description),
			IsOnCampus:  onCampus,
			OpenWindows: ParseHours(fl.Hours),
		})
	}
	return NewDataset(locs), nil
}

// LoadFile reads a YAML dataset from disk.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dining dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// FromSource resolves a dataset source: "builtin", "file:<path>" or an
// http(s) URL of a venue listing page.
func FromSource(ctx context.Context, source string, client *http.Client) (*Dataset, error) {
	switch {
	case source == "" || source == "builtin":
		return DefaultDataset(), nil
	case strings.HasPrefix(source, "file:"):
		return LoadFile(strings.TrimPrefix(source, "file:"))
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return Scrape(ctx, client, source)
	}
	return nil, fmt.Errorf("%w: unknown DINING_SOURCE %q", shared.ErrConfiguration, source)
}
