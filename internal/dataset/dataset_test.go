package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johnwards/menuseed/internal/dataset"
)

const sampleJSON = `{
  "categories": [
    {"name": "Burgers", "description": "Grilled"},
    {"name": "Pizzas", "description": "Baked"}
  ],
  "customizations": [
    {"name": "Extra Cheese", "price": 25, "type": "topping"}
  ],
  "menu": [
    {
      "name": "Classic Cheeseburger",
      "description": "Beef patty",
      "image_url": "https://images.example.com/burger.png",
      "price": 25.99,
      "rating": 4.5,
      "calories": 550,
      "protein": 25,
      "category_name": "Burgers",
      "customizations": ["Extra Cheese"]
    }
  ]
}`

const sampleYAML = `
categories:
  - name: Burgers
    description: Grilled
customizations:
  - name: Fries
    price: 35.5
    type: side
menu:
  - name: Classic Cheeseburger
    image_url: https://images.example.com/burger.png
    price: 25.99
    category_name: Burgers
    customizations: [Fries]
`

func TestParseJSON(t *testing.T) {
	ds, err := dataset.Parse([]byte(sampleJSON), dataset.FormatJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds.Categories) != 2 || len(ds.Customizations) != 1 || len(ds.Menu) != 1 {
		t.Fatalf("unexpected sizes: %d categories, %d customizations, %d menu",
			len(ds.Categories), len(ds.Customizations), len(ds.Menu))
	}
	item := ds.Menu[0]
	if item.Price.String() != "25.99" {
		t.Errorf("price = %s, want 25.99", item.Price)
	}
	if item.CategoryName != "Burgers" {
		t.Errorf("category_name = %q, want Burgers", item.CategoryName)
	}
	if ds.LinkCount() != 1 {
		t.Errorf("LinkCount = %d, want 1", ds.LinkCount())
	}
}

func TestParseYAML(t *testing.T) {
	ds, err := dataset.Parse([]byte(sampleYAML), dataset.FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := ds.Customizations[0].Price.String(); got != "35.5" {
		t.Errorf("customization price = %s, want 35.5", got)
	}
	if got := ds.Menu[0].Customizations; len(got) != 1 || got[0] != "Fries" {
		t.Errorf("customizations = %v, want [Fries]", got)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	bad := strings.Replace(sampleJSON, `"protein": 25,`, `"protein": 25, "spicy": true,`, 1)
	if _, err := dataset.Parse([]byte(bad), dataset.FormatJSON); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	bad := `{
	  "categories": [{"name": ""}],
	  "customizations": [{"name": "x", "price": 1}],
	  "menu": [{"name": "m", "image_url": "not-a-url", "price": 1, "category_name": "c"}]
	}`
	_, err := dataset.Parse([]byte(bad), dataset.FormatJSON)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"categories[0]", "customizations[0]", "menu[0]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestCheckReferences(t *testing.T) {
	ds, err := dataset.Parse([]byte(sampleJSON), dataset.FormatJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := ds.CheckReferences(); err != nil {
		t.Fatalf("expected references to resolve, got %v", err)
	}

	ds.Menu[0].CategoryName = "Tacos"
	ds.Menu[0].Customizations = append(ds.Menu[0].Customizations, "Guacamole")

	err = ds.CheckReferences()
	if !errors.Is(err, dataset.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
	if !errors.Is(err, dataset.ErrUnknownCustomization) {
		t.Errorf("expected ErrUnknownCustomization, got %v", err)
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "data.json")
	if err := os.WriteFile(jsonPath, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := dataset.Load(jsonPath); err != nil {
		t.Errorf("load json: %v", err)
	}

	yamlPath := filepath.Join(dir, "data.yml")
	if err := os.WriteFile(yamlPath, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := dataset.Load(yamlPath); err != nil {
		t.Errorf("load yaml: %v", err)
	}

	if _, err := dataset.Load(filepath.Join(dir, "data.txt")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := dataset.Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultDataset(t *testing.T) {
	ds, err := dataset.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if len(ds.Categories) == 0 || len(ds.Customizations) == 0 || len(ds.Menu) == 0 {
		t.Fatal("default dataset should not be empty")
	}
	if err := ds.CheckReferences(); err != nil {
		t.Errorf("default dataset has dangling references: %v", err)
	}
}
