// Package samples holds the built-in catalog of code samples and their seeded defects.
package samples

import (
	"github.com/KirkDiggler/codered/internal/models"
)

// Catalog provides the samples rounds are built from
type Catalog interface {
	// All returns every sample; the slice must not be modified
	All() []*models.Sample

	// Get returns a sample by ID
	Get(id int) (*models.Sample, bool)
}

type catalog struct {
	samples []*models.Sample
}

// New returns a catalog over the given samples
func New(samples []*models.Sample) (Catalog, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyCatalog
	}
	for _, s := range samples {
		if len(s.Defects) == 0 {
			return nil, ErrSampleWithoutDefects
		}
	}
	return &catalog{samples: samples}, nil
}

// Default returns the built-in catalog
func Default() Catalog {
	return &catalog{samples: builtin}
}

func (c *catalog) All() []*models.Sample {
	return c.samples
}

func (c *catalog) Get(id int) (*models.Sample, bool) {
	for _, s := range c.samples {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}
