package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Stored prices are JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CustomizationType classifies a customization. Values outside the known set
// are allowed and stored as given.
type CustomizationType string

// Known customization types.
const (
	CustomizationTopping CustomizationType = "topping"
	CustomizationSide    CustomizationType = "side"
	CustomizationSize    CustomizationType = "size"
	CustomizationCrust   CustomizationType = "crust"
)

// Known reports whether t is one of the predefined customization types.
func (t CustomizationType) Known() bool {
	switch t {
	case CustomizationTopping, CustomizationSide, CustomizationSize, CustomizationCrust:
		return true
	}
	return false
}

// Category is a menu section such as "Burgers" or "Pizzas".
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the required category fields.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	return nil
}

// Customization is an option that can be attached to menu items.
type Customization struct {
	Name  string            `json:"name"`
	Price decimal.Decimal   `json:"price"`
	Type  CustomizationType `json:"type"`
}

// Validate checks the required customization fields.
func (c Customization) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customization name is required")
	}
	if c.Type == "" {
		return fmt.Errorf("customization %q: type is required", c.Name)
	}
	if c.Price.IsNegative() {
		return fmt.Errorf("customization %q: price must not be negative", c.Name)
	}
	return nil
}

// MenuItem is a menu document as stored. CategoryID references a category
// document and ImageURL points at the uploaded copy of the item image.
type MenuItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Calories    int             `json:"calories"`
	Protein     int             `json:"protein"`
	CategoryID  string          `json:"categories"`
}

// Validate checks the required menu item fields.
func (m MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("menu item name is required")
	}
	if m.ImageURL == "" {
		return fmt.Errorf("menu item %q: image_url is required", m.Name)
	}
	if m.CategoryID == "" {
		return fmt.Errorf("menu item %q: categories is required", m.Name)
	}
	if m.Price.IsNegative() {
		return fmt.Errorf("menu item %q: price must not be negative", m.Name)
	}
	return nil
}

// MenuCustomization links a menu item to one of its customizations.
type MenuCustomization struct {
	MenuID          string `json:"menu"`
	CustomizationID string `json:"customizations"`
}

// Validate checks that both sides of the link are set.
func (l MenuCustomization) Validate() error {
	if l.MenuID == "" || l.CustomizationID == "" {
		return fmt.Errorf("menu customization requires menu and customizations")
	}
	return nil
}

// CategoryRecord is a stored category.
type CategoryRecord struct {
	ID string `json:"-"`
	Category
}

// CustomizationRecord is a stored customization.
type CustomizationRecord struct {
	ID string `json:"-"`
	Customization
}

// MenuItemRecord is a stored menu item.
type MenuItemRecord struct {
	ID string `json:"-"`
	MenuItem
}

// MenuCustomizationRecord is a stored menu/customization link.
type MenuCustomizationRecord struct {
	ID string `json:"-"`
	MenuCustomization
}

// DecodeCategory converts a store document into a validated CategoryRecord.
func DecodeCategory(doc Document) (CategoryRecord, error) {
	rec := CategoryRecord{ID: doc.ID}
	if err := decode(doc, &rec.Category); err != nil {
		return CategoryRecord{}, err
	}
	return rec, nil
}

// DecodeCustomization converts a store document into a validated CustomizationRecord.
func DecodeCustomization(doc Document) (CustomizationRecord, error) {
	rec := CustomizationRecord{ID: doc.ID}
	if err := decode(doc, &rec.Customization); err != nil {
		return CustomizationRecord{}, err
	}
	return rec, nil
}

// DecodeMenuItem converts a store document into a validated MenuItemRecord.
func DecodeMenuItem(doc Document) (MenuItemRecord, error) {
	rec := MenuItemRecord{ID: doc.ID}
	if err := decode(doc, &rec.MenuItem); err != nil {
		return MenuItemRecord{}, err
	}
	return rec, nil
}

// DecodeMenuCustomization converts a store document into a validated
// MenuCustomizationRecord.
func DecodeMenuCustomization(doc Document) (MenuCustomizationRecord, error) {
	rec := MenuCustomizationRecord{ID: doc.ID}
	if err := decode(doc, &rec.MenuCustomization); err != nil {
		return MenuCustomizationRecord{}, err
	}
	return rec, nil
}
