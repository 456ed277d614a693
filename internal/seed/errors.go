package seed

import "fmt"

// Errors that abort a seed run.
var (
	// ErrDownload is returned when a source image answers with a non-200 status.
	ErrDownload = fmt.Errorf("failed to download image")
	// ErrFileNotFound is returned when a downloaded image is missing from the cache.
	ErrFileNotFound = fmt.Errorf("file not found")
	// ErrCategoryNotFound is returned when a menu item names an unknown category.
	ErrCategoryNotFound = fmt.Errorf("category not found")
	// ErrCustomizationNotFound is returned when a menu item names an unknown customization.
	ErrCustomizationNotFound = fmt.Errorf("customization not found")
	// ErrClearFailed is returned in strict mode when a delete fails for a
	// reason other than the target being gone already.
	ErrClearFailed = fmt.Errorf("clear failed")
)
