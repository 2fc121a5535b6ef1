package catalog

import (
	"agency/internal/pricing"
)

// Bundle is an authored, sellable package offering. Records are immutable once
// loaded; adapters derive every view-model from them.
//
// Invariants (checked by Validate, not by construction):
//   - exactly one of Includes/IncludesTable is authored (warning otherwise)
//   - Outcomes has at least one entry (warning otherwise)
//   - Slug is unique across the catalog (error otherwise)
type Bundle struct {
	ID          string   `yaml:"id" json:"id" validate:"required"`
	Slug        string   `yaml:"slug" json:"slug" validate:"required,slug"`
	Name        string   `yaml:"name" json:"name" validate:"required,max=120"`
	Service     string   `yaml:"service" json:"service" validate:"required"`
	Tier        string   `yaml:"tier,omitempty" json:"tier,omitempty" validate:"omitempty,oneof=starter growth scale enterprise"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty" validate:"dive,required"`
	Summary     string   `yaml:"summary" json:"summary" validate:"required"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Timeline    string   `yaml:"timeline,omitempty" json:"timeline,omitempty"`
	Outcomes    []string `yaml:"outcomes,omitempty" json:"outcomes,omitempty" validate:"dive,required"`

	Price   pricing.Price `yaml:"price,omitempty" json:"price,omitempty"`
	Pricing *Pricing      `yaml:"pricing,omitempty" json:"pricing,omitempty"`

	Includes      []IncludesGroup `yaml:"includes,omitempty" json:"includes,omitempty" validate:"dive"`
	IncludesTable *IncludesTable  `yaml:"includesTable,omitempty" json:"includesTable,omitempty"`

	AddOnIDs []string `yaml:"addOns,omitempty" json:"addOns,omitempty" validate:"dive,required"`
	FAQ      []FAQ    `yaml:"faq,omitempty" json:"faq,omitempty" validate:"dive"`
	Featured bool     `yaml:"featured,omitempty" json:"featured,omitempty"`
}

// Pricing carries tiered prices for bundles that do not author a single price.
type Pricing struct {
	Currency string         `yaml:"currency,omitempty" json:"currency,omitempty" validate:"omitempty,len=3"`
	Tiers    []pricing.Tier `yaml:"tiers" json:"tiers" validate:"min=1,dive"`
	Notes    []string       `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// IncludesGroup is a named bullet list describing part of a bundle.
type IncludesGroup struct {
	Title string   `yaml:"title" json:"title" validate:"required"`
	Items []string `yaml:"items" json:"items" validate:"min=1,dive,required"`
}

// IncludesTable is the columns/rows fallback some bundles author instead of
// grouped bullets. The first column names the row.
type IncludesTable struct {
	Caption string     `yaml:"caption,omitempty" json:"caption,omitempty"`
	Columns []string   `yaml:"columns" json:"columns" validate:"min=1,dive,required"`
	Rows    [][]string `yaml:"rows" json:"rows" validate:"min=1"`
}

// FAQ is a question shown on the bundle detail page.
type FAQ struct {
	Question string `yaml:"question" json:"question" validate:"required"`
	Answer   string `yaml:"answer" json:"answer" validate:"required"`
}

// AddOn is an optional extra sold alongside bundles. It carries either a price
// or a free-text price note.
type AddOn struct {
	ID          string        `yaml:"id" json:"id" validate:"required"`
	Name        string        `yaml:"name" json:"name" validate:"required"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Price       pricing.Price `yaml:"price,omitempty" json:"price,omitempty"`
	PriceNote   string        `yaml:"priceNote,omitempty" json:"priceNote,omitempty"`
	Bullets     []string      `yaml:"bullets,omitempty" json:"bullets,omitempty" validate:"dive,required"`
}

// Catalog is the loaded set of bundles and add-ons, in authored order.
type Catalog struct {
	Bundles []Bundle `yaml:"bundles,omitempty" json:"bundles"`
	AddOns  []AddOn  `yaml:"addOns,omitempty" json:"addOns"`
}

// BundleBySlug returns the first bundle with slug.
func (c *Catalog) BundleBySlug(slug string) (Bundle, bool) {
	for _, b := range c.Bundles {
		if b.Slug == slug {
			return b, true
		}
	}
	return Bundle{}, false
}

// AddOnByID returns the add-on with id.
func (c *Catalog) AddOnByID(id string) (AddOn, bool) {
	for _, a := range c.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

// AddOnsFor resolves a bundle's add-on references, skipping unknown IDs.
func (c *Catalog) AddOnsFor(b Bundle) []AddOn {
	if len(b.AddOnIDs) == 0 {
		return nil
	}
	byID := make(map[string]AddOn, len(c.AddOns))
	for _, a := range c.AddOns {
		byID[a.ID] = a
	}
	out := make([]AddOn, 0, len(b.AddOnIDs))
	for _, id := range b.AddOnIDs {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}
