// Package seed wipes the menu collections and the image bucket and
// repopulates them from a dataset. Inserts and uploads run strictly in
// order because later documents reference the IDs of earlier ones.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/johnwards/menuseed/internal/dataset"
	"github.com/johnwards/menuseed/internal/domain"
)

// Counts tallies what a seed run created.
type Counts struct {
	Categories     int
	Customizations int
	MenuItems      int
	Links          int
	Images         int
}

// Result is the outcome of a seed run. When Success is false, FailedStep
// names the step that failed and everything before it has been applied.
type Result struct {
	Success        bool
	StepsCompleted int
	FailedStep     string
	Err            error
	Counts         Counts
	ClearFailures  int
	Duration       time.Duration
}

// run carries the state of a single Seed call.
type run struct {
	s      *Seeder
	result Result

	categories     map[string]string
	customizations map[string]string
}

// step runs fn as a named step. A failing step is recorded in the result
// and stops the run.
func (r *run) step(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return r.fail(name, err)
	}
	if err := fn(ctx); err != nil {
		return r.fail(name, err)
	}
	r.result.StepsCompleted++
	return nil
}

func (r *run) fail(name string, err error) error {
	r.result.FailedStep = name
	r.result.Err = err
	return err
}

// Seed clears all four collections and the bucket, then inserts categories,
// customizations, and for each menu item its image, its document and its
// customization links. It never panics and reports failure through Result.
func (s *Seeder) Seed(ctx context.Context, ds *dataset.Dataset) Result {
	start := s.now()
	ctx, span := s.startSpan(ctx, "seed.run", attribute.String("database", s.cfg.DatabaseID))

	r := &run{
		s:              s,
		categories:     make(map[string]string, len(ds.Categories)),
		customizations: make(map[string]string, len(ds.Customizations)),
	}
	err := r.execute(ctx, ds)

	r.result.Success = err == nil
	r.result.Duration = s.now().Sub(start)
	endSpan(span, err)
	s.metrics.observeRun(r.result)

	if err != nil {
		s.logger.Error("failed to seed the database",
			"step", r.result.FailedStep, "steps_completed", r.result.StepsCompleted, "error", err)
	} else {
		c := r.result.Counts
		s.logger.Info("seeding complete",
			"categories", c.Categories, "customizations", c.Customizations,
			"menu_items", c.MenuItems, "links", c.Links, "images", c.Images,
			"clear_failures", r.result.ClearFailures, "duration", r.result.Duration)
	}
	return r.result
}

func (r *run) execute(ctx context.Context, ds *dataset.Dataset) error {
	s := r.s
	cols := s.cfg.Collections

	for _, col := range []string{cols.Categories, cols.Customizations, cols.Menu, cols.MenuCustomizations} {
		err := r.step(ctx, "clear "+col, func(ctx context.Context) error {
			report, err := s.ClearAll(ctx, col)
			r.result.ClearFailures += report.Failed
			return err
		})
		if err != nil {
			return err
		}
	}
	err := r.step(ctx, "clear storage", func(ctx context.Context) error {
		report, err := s.ClearStorage(ctx)
		r.result.ClearFailures += report.Failed
		return err
	})
	if err != nil {
		return err
	}

	if err := r.step(ctx, "insert categories", func(ctx context.Context) error {
		return r.insertCategories(ctx, ds.Categories)
	}); err != nil {
		return err
	}
	if err := r.step(ctx, "insert customizations", func(ctx context.Context) error {
		return r.insertCustomizations(ctx, ds.Customizations)
	}); err != nil {
		return err
	}

	for _, item := range ds.Menu {
		if err := r.seedMenuItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) insertCategories(ctx context.Context, categories []domain.Category) (err error) {
	s := r.s
	ctx, span := s.startSpan(ctx, "seed.insert_categories", attribute.Int("count", len(categories)))
	defer func() { endSpan(span, err) }()

	for _, c := range categories {
		doc, err := s.createDocument(ctx, s.cfg.Collections.Categories, c)
		if err != nil {
			return err
		}
		rec, err := domain.DecodeCategory(doc)
		if err != nil {
			return err
		}
		r.categories[c.Name] = rec.ID
		r.result.Counts.Categories++
	}
	return nil
}

func (r *run) insertCustomizations(ctx context.Context, customizations []domain.Customization) (err error) {
	s := r.s
	ctx, span := s.startSpan(ctx, "seed.insert_customizations", attribute.Int("count", len(customizations)))
	defer func() { endSpan(span, err) }()

	for _, c := range customizations {
		doc, err := s.createDocument(ctx, s.cfg.Collections.Customizations, c)
		if err != nil {
			return err
		}
		rec, err := domain.DecodeCustomization(doc)
		if err != nil {
			return err
		}
		r.customizations[c.Name] = rec.ID
		r.result.Counts.Customizations++
	}
	return nil
}

// seedMenuItem resolves the category, uploads the image, creates the menu
// document and then one link per customization, in that order.
func (r *run) seedMenuItem(ctx context.Context, item dataset.MenuItem) error {
	s := r.s

	categoryID, ok := r.categories[item.CategoryName]
	if !ok {
		return r.fail("resolve category for "+item.Name,
			fmt.Errorf("%w: %s", ErrCategoryNotFound, item.CategoryName))
	}

	var imageURL string
	if err := r.step(ctx, "upload image for "+item.Name, func(ctx context.Context) error {
		var err error
		imageURL, err = s.UploadImage(ctx, item.ImageURL)
		if err == nil {
			r.result.Counts.Images++
		}
		return err
	}); err != nil {
		return err
	}

	var menuID string
	if err := r.step(ctx, "create menu item "+item.Name, func(ctx context.Context) error {
		doc, err := s.createDocument(ctx, s.cfg.Collections.Menu, domain.MenuItem{
			Name:        item.Name,
			Description: item.Description,
			ImageURL:    imageURL,
			Price:       item.Price,
			Rating:      item.Rating,
			Calories:    item.Calories,
			Protein:     item.Protein,
			CategoryID:  categoryID,
		})
		if err != nil {
			return err
		}
		rec, err := domain.DecodeMenuItem(doc)
		if err != nil {
			return err
		}
		menuID = rec.ID
		r.result.Counts.MenuItems++
		return nil
	}); err != nil {
		return err
	}

	for _, name := range item.Customizations {
		customizationID, ok := r.customizations[name]
		if !ok {
			return r.fail("resolve customization "+name+" for "+item.Name,
				fmt.Errorf("%w: %s", ErrCustomizationNotFound, name))
		}
		if err := r.step(ctx, "link "+item.Name+" to "+name, func(ctx context.Context) error {
			doc, err := s.createDocument(ctx, s.cfg.Collections.MenuCustomizations, domain.MenuCustomization{
				MenuID:          menuID,
				CustomizationID: customizationID,
			})
			if err != nil {
				return err
			}
			if _, err := domain.DecodeMenuCustomization(doc); err != nil {
				return err
			}
			r.result.Counts.Links++
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
