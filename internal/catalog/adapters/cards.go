// Package adapters maps authored catalog records to the view-models the
// website renders. Every function here is pure.
package adapters

import (
	"slices"
	"sort"
	"strings"

	"agency/internal/catalog"
	"agency/internal/pricing"
)

// Routes used by every CTA. These are a fixed site convention.
const (
	RouteBook     = "/book"
	RouteContact  = "/contact"
	RoutePackages = "/packages"
)

// DefaultFeatureLimit caps card feature lists when options leave it unset.
const DefaultFeatureLimit = 5

// PackagePath is the detail route for a bundle.
func PackagePath(slug string) string {
	return RoutePackages + "/" + slug
}

// CTA is a call-to-action link.
type CTA struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Variant string `json:"variant"`
}

// CardOptions tunes ToPackageCard. Zero values select the defaults.
type CardOptions struct {
	// FeatureLimit caps the flattened feature list; negative means no cap.
	FeatureLimit     int
	PrimaryCTA       *CTA
	SecondaryCTA     *CTA
	MostPopularSlugs []string
}

// PackageCard is the grid/list view-model for a bundle.
type PackageCard struct {
	ID           string         `json:"id"`
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	Service      string         `json:"service"`
	Tier         string         `json:"tier,omitempty"`
	Summary      string         `json:"summary"`
	Tags         []string       `json:"tags,omitempty"`
	Href         string         `json:"href"`
	Price        *pricing.Money `json:"price,omitempty"`
	PriceLabel   string         `json:"priceLabel,omitempty"`
	Features     []string       `json:"features"`
	MoreFeatures int            `json:"moreFeatures,omitempty"`
	CTAs         []CTA          `json:"ctas"`
	MostPopular  bool           `json:"mostPopular"`
}

// ResolvePrice prefers the authored price and otherwise derives one from
// pricing tiers.
func ResolvePrice(b catalog.Bundle) (pricing.Money, bool) {
	if b.Price.IsSet() {
		if m, ok := b.Price.Normalize(); ok {
			return m, true
		}
	}
	if b.Pricing != nil {
		return pricing.DerivePriceFromPricing(b.Pricing.Tiers, b.Pricing.Currency)
	}
	return pricing.Money{}, false
}

// DefaultCTAs returns the "View details" / "Book a call" pair for a bundle.
func DefaultCTAs(slug string) (CTA, CTA) {
	return CTA{Label: "View details", Href: PackagePath(slug), Variant: "primary"},
		CTA{Label: "Book a call", Href: RouteBook, Variant: "secondary"}
}

// ToPackageCard builds the card view-model for one bundle.
func ToPackageCard(b catalog.Bundle, opts CardOptions) PackageCard {
	features := FlattenFeatures(b)
	limit := opts.FeatureLimit
	if limit == 0 {
		limit = DefaultFeatureLimit
	}
	more := 0
	if limit > 0 && len(features) > limit {
		more = len(features) - limit
		features = features[:limit]
	}

	primary, secondary := DefaultCTAs(b.Slug)
	if opts.PrimaryCTA != nil {
		primary = *opts.PrimaryCTA
	}
	if opts.SecondaryCTA != nil {
		secondary = *opts.SecondaryCTA
	}

	card := PackageCard{
		ID:           b.ID,
		Slug:         b.Slug,
		Name:         b.Name,
		Service:      b.Service,
		Tier:         b.Tier,
		Summary:      b.Summary,
		Tags:         b.Tags,
		Href:         PackagePath(b.Slug),
		Features:     features,
		MoreFeatures: more,
		CTAs:         []CTA{primary, secondary},
		MostPopular:  b.Featured || slices.Contains(opts.MostPopularSlugs, b.Slug),
	}
	if m, ok := ResolvePrice(b); ok {
		card.Price = &m
		card.PriceLabel = pricing.StartingAtLabel(m)
	}
	return card
}

// FlattenFeatures lists include items in authored order. Bundles that only
// author an includes table contribute the first cell of each row.
func FlattenFeatures(b catalog.Bundle) []string {
	var out []string
	if len(b.Includes) > 0 {
		for _, g := range b.Includes {
			out = append(out, g.Items...)
		}
		return out
	}
	if b.IncludesTable != nil {
		for _, row := range b.IncludesTable.Rows {
			if len(row) > 0 && strings.TrimSpace(row[0]) != "" {
				out = append(out, row[0])
			}
		}
	}
	return out
}

// GridOptions tunes ToPackageGrid.
type GridOptions struct {
	CardOptions
	// FeaturedSlugs pins bundles to the front in this order.
	FeaturedSlugs []string
	// Service keeps only bundles of one service line when set.
	Service string
	// Limit caps the number of cards; zero means no cap.
	Limit int
}

// SortBundles orders bundles for grids: bundles named in featuredSlugs first by
// their index there (ties by name), then the rest by name. The input is not
// modified.
func SortBundles(bundles []catalog.Bundle, featuredSlugs []string) []catalog.Bundle {
	rank := make(map[string]int, len(featuredSlugs))
	for i, slug := range featuredSlugs {
		if _, seen := rank[slug]; !seen {
			rank[slug] = i
		}
	}

	out := slices.Clone(bundles)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iFeatured := rank[out[i].Slug]
		rj, jFeatured := rank[out[j].Slug]
		switch {
		case iFeatured && jFeatured:
			if ri != rj {
				return ri < rj
			}
			return lessName(out[i], out[j])
		case iFeatured != jFeatured:
			return iFeatured
		default:
			return lessName(out[i], out[j])
		}
	})
	return out
}

func lessName(a, b catalog.Bundle) bool {
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// ToPackageGrid filters, sorts and maps bundles to cards.
func ToPackageGrid(bundles []catalog.Bundle, opts GridOptions) []PackageCard {
	filtered := bundles
	if opts.Service != "" {
		filtered = make([]catalog.Bundle, 0, len(bundles))
		for _, b := range bundles {
			if b.Service == opts.Service {
				filtered = append(filtered, b)
			}
		}
	}

	sorted := SortBundles(filtered, opts.FeaturedSlugs)
	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}

	cards := make([]PackageCard, 0, len(sorted))
	for _, b := range sorted {
		cards = append(cards, ToPackageCard(b, opts.CardOptions))
	}
	return cards
}
