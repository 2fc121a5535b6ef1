package adapters

import (
	"agency/internal/catalog"
	"agency/internal/pricing"
)

// TierView is one pricing option on the detail page.
type TierView struct {
	Name        string   `json:"name"`
	PriceLabel  string   `json:"priceLabel"`
	Period      string   `json:"period,omitempty"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// AddOnCard is the view-model for an add-on.
type AddOnCard struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PriceLabel  string   `json:"priceLabel"`
	Bullets     []string `json:"bullets,omitempty"`
}

// PackageDetail is the detail page view-model for a bundle.
type PackageDetail struct {
	Card          PackageCard             `json:"card"`
	Description   string                  `json:"description,omitempty"`
	Timeline      string                  `json:"timeline,omitempty"`
	Outcomes      []string                `json:"outcomes"`
	Includes      []catalog.IncludesGroup `json:"includes"`
	IncludesTable *catalog.IncludesTable  `json:"includesTable,omitempty"`
	Tiers         []TierView              `json:"tiers,omitempty"`
	AddOns        []AddOnCard             `json:"addOns,omitempty"`
	FAQ           []catalog.FAQ           `json:"faq,omitempty"`
	CTAs          []CTA                   `json:"ctas"`
}

// ToAddOnCard renders the add-on price summary or, lacking one, its note.
func ToAddOnCard(a catalog.AddOn) AddOnCard {
	return AddOnCard{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		PriceLabel:  pricing.DisplayPrice(a.Price.Shape, a.PriceNote),
		Bullets:     a.Bullets,
	}
}

// ToPackageDetail builds the detail view-model. Feature lists are never
// truncated here. When only an includes table is authored, Includes carries a
// single group built from the table's first column so list renderers still work.
func ToPackageDetail(b catalog.Bundle, addOns []catalog.AddOn) PackageDetail {
	card := ToPackageCard(b, CardOptions{FeatureLimit: -1})

	detail := PackageDetail{
		Card:          card,
		Description:   b.Description,
		Timeline:      b.Timeline,
		Outcomes:      b.Outcomes,
		Includes:      b.Includes,
		IncludesTable: b.IncludesTable,
		FAQ:           b.FAQ,
		CTAs: []CTA{
			{Label: "Book a call", Href: RouteBook, Variant: "primary"},
			{Label: "Ask a question", Href: RouteContact, Variant: "secondary"},
		},
	}
	if len(detail.Includes) == 0 && b.IncludesTable != nil {
		title := b.IncludesTable.Caption
		if title == "" {
			title = "What's included"
		}
		detail.Includes = []catalog.IncludesGroup{{Title: title, Items: FlattenFeatures(b)}}
	}

	if b.Pricing != nil {
		for _, t := range b.Pricing.Tiers {
			detail.Tiers = append(detail.Tiers, toTierView(t, b.Pricing.Currency))
		}
	}
	for _, a := range addOns {
		detail.AddOns = append(detail.AddOns, ToAddOnCard(a))
	}
	return detail
}

func toTierView(t pricing.Tier, currency string) TierView {
	label := string(t.Price)
	if v, ok := t.Price.Value(); ok {
		label = pricing.FormatMoney(v, currency, pricing.DefaultLocale)
	}
	return TierView{
		Name:        t.Name,
		PriceLabel:  label,
		Period:      t.Period,
		Description: t.Description,
		Features:    t.Features,
	}
}
