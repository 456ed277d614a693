// Package dataset loads the static menu data the seeder writes to the
// backend. Menu items reference categories and customizations by name.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/johnwards/menuseed/internal/domain"
)

// Errors returned by CheckReferences.
var (
	ErrUnknownCategory      = fmt.Errorf("unknown category")
	ErrUnknownCustomization = fmt.Errorf("unknown customization")
)

// Format is the encoding of a dataset file.
type Format string

// Supported dataset formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// MenuItem is a menu entry as written in the source data.
type MenuItem struct {
	Name           string          `json:"name" yaml:"name"`
	Description    string          `json:"description" yaml:"description"`
	ImageURL       string          `json:"image_url" yaml:"image_url"`
	Price          decimal.Decimal `json:"price" yaml:"price"`
	Rating         float64         `json:"rating" yaml:"rating"`
	Calories       int             `json:"calories" yaml:"calories"`
	Protein        int             `json:"protein" yaml:"protein"`
	CategoryName   string          `json:"category_name" yaml:"category_name"`
	Customizations []string        `json:"customizations" yaml:"customizations"`
}

// Dataset is the complete seed input.
type Dataset struct {
	Categories     []domain.Category      `json:"categories" yaml:"categories"`
	Customizations []domain.Customization `json:"customizations" yaml:"customizations"`
	Menu           []MenuItem             `json:"menu" yaml:"menu"`
}

// Default returns the dataset embedded in the binary.
func Default() (*Dataset, error) {
	return Parse(defaultDataset, FormatYAML)
}

// Load reads a dataset file. The format is chosen from the file extension.
func Load(path string) (*Dataset, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("dataset %s: unsupported extension %q", path, filepath.Ext(path))
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	ds, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes and validates a dataset.
func Parse(data []byte, format Format) (*Dataset, error) {
	var ds Dataset
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks every entry for required fields. All problems are
// reported together.
func (ds *Dataset) Validate() error {
	var errs []error
	for i, c := range ds.Categories {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("categories[%d]: %w", i, err))
		}
	}
	for i, c := range ds.Customizations {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("customizations[%d]: %w", i, err))
		}
	}
	for i, m := range ds.Menu {
		if err := m.validate(); err != nil {
			errs = append(errs, fmt.Errorf("menu[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (m MenuItem) validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("menu item name is required")
	}
	if strings.TrimSpace(m.CategoryName) == "" {
		return fmt.Errorf("menu item %q: category_name is required", m.Name)
	}
	u, err := url.Parse(m.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("menu item %q: image_url must be an absolute http(s) URL", m.Name)
	}
	if m.Price.IsNegative() {
		return fmt.Errorf("menu item %q: price must not be negative", m.Name)
	}
	if m.Rating < 0 {
		return fmt.Errorf("menu item %q: rating must not be negative", m.Name)
	}
	return nil
}

// CheckReferences reports every menu item whose category or customization
// names do not appear in the dataset.
func (ds *Dataset) CheckReferences() error {
	categories := make(map[string]bool, len(ds.Categories))
	for _, c := range ds.Categories {
		categories[c.Name] = true
	}
	customizations := make(map[string]bool, len(ds.Customizations))
	for _, c := range ds.Customizations {
		customizations[c.Name] = true
	}

	var errs []error
	for _, m := range ds.Menu {
		if !categories[m.CategoryName] {
			errs = append(errs, fmt.Errorf("menu item %q: %w: %s", m.Name, ErrUnknownCategory, m.CategoryName))
		}
		for _, name := range m.Customizations {
			if !customizations[name] {
				errs = append(errs, fmt.Errorf("menu item %q: %w: %s", m.Name, ErrUnknownCustomization, name))
			}
		}
	}
	return errors.Join(errs...)
}

// LinkCount returns the number of menu/customization links a complete seed
// run creates.
func (ds *Dataset) LinkCount() int {
	n := 0
	for _, m := range ds.Menu {
		n += len(m.Customizations)
	}
	return n
}
