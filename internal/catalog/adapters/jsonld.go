package adapters

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"agency/internal/catalog"
	"agency/internal/pricing"
)

const schemaContext = "https://schema.org"

// JSONLDOptions carries the site-level values structured data needs.
type JSONLDOptions struct {
	BaseURL      string
	ProviderName string
}

func (o JSONLDOptions) url(path string) string {
	return strings.TrimRight(o.BaseURL, "/") + path
}

// ServiceJSONLD is a schema.org Service with its offers.
type ServiceJSONLD struct {
	Context     string        `json:"@context"`
	Type        string        `json:"@type"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	ServiceType string        `json:"serviceType,omitempty"`
	URL         string        `json:"url"`
	Provider    *Organization `json:"provider,omitempty"`
	Offers      []OfferJSONLD `json:"offers,omitempty"`
}

// Organization is the schema.org provider node.
type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// OfferJSONLD is a schema.org Offer. Recurring prices carry a unit price
// specification billed per month.
type OfferJSONLD struct {
	Type               string                  `json:"@type"`
	Name               string                  `json:"name,omitempty"`
	Price              string                  `json:"price,omitempty"`
	PriceCurrency      string                  `json:"priceCurrency"`
	URL                string                  `json:"url"`
	PriceSpecification *UnitPriceSpecification `json:"priceSpecification,omitempty"`
}

// UnitPriceSpecification describes a recurring price.
type UnitPriceSpecification struct {
	Type          string `json:"@type"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
	UnitCode      string `json:"unitCode"`
	UnitText      string `json:"unitText"`
}

// ItemListJSONLD is a schema.org ItemList of bundle pages.
type ItemListJSONLD struct {
	Context         string         `json:"@context"`
	Type            string         `json:"@type"`
	Name            string         `json:"name,omitempty"`
	ItemListElement []ListItemNode `json:"itemListElement"`
}

// ListItemNode is one ItemList entry.
type ListItemNode struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	URL      string `json:"url"`
	Name     string `json:"name"`
}

// ToServiceJSONLD builds the structured data for a bundle detail page. Bundles
// with no resolvable price get no offers.
func ToServiceJSONLD(b catalog.Bundle, opts JSONLDOptions) ServiceJSONLD {
	pageURL := opts.url(PackagePath(b.Slug))
	node := ServiceJSONLD{
		Context:     schemaContext,
		Type:        "Service",
		Name:        b.Name,
		Description: b.Summary,
		ServiceType: b.Service,
		URL:         pageURL,
	}
	if opts.ProviderName != "" {
		node.Provider = &Organization{Type: "Organization", Name: opts.ProviderName}
	}

	m, ok := ResolvePrice(b)
	if !ok {
		return node
	}
	if m.OneTime > 0 {
		name := "One-time"
		if pricing.IsHybrid(m) {
			name = "Setup"
		}
		node.Offers = append(node.Offers, OfferJSONLD{
			Type:          "Offer",
			Name:          name,
			Price:         formatAmount(m.OneTime),
			PriceCurrency: m.Currency,
			URL:           pageURL,
		})
	}
	if m.Monthly > 0 {
		node.Offers = append(node.Offers, OfferJSONLD{
			Type:          "Offer",
			Name:          "Monthly",
			PriceCurrency: m.Currency,
			URL:           pageURL,
			PriceSpecification: &UnitPriceSpecification{
				Type:          "UnitPriceSpecification",
				Price:         formatAmount(m.Monthly),
				PriceCurrency: m.Currency,
				UnitCode:      "MON",
				UnitText:      "month",
			},
		})
	}
	return node
}

// ToItemListJSONLD lists bundle pages in the given order, positions from 1.
func ToItemListJSONLD(bundles []catalog.Bundle, opts JSONLDOptions) ItemListJSONLD {
	list := ItemListJSONLD{
		Context:         schemaContext,
		Type:            "ItemList",
		Name:            "Packages",
		ItemListElement: make([]ListItemNode, 0, len(bundles)),
	}
	for i, b := range bundles {
		list.ItemListElement = append(list.ItemListElement, ListItemNode{
			Type:     "ListItem",
			Position: i + 1,
			URL:      opts.url(PackagePath(b.Slug)),
			Name:     b.Name,
		})
	}
	return list
}

// MarshalJSONLD serializes v for embedding in a script tag. Every "<" is
// written as \u003c so authored text cannot close the tag.
func MarshalJSONLD(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return bytes.ReplaceAll(out, []byte("<"), []byte(`\u003c`)), nil
}

// ScriptTag wraps serialized JSON-LD in its script element.
func ScriptTag(v any) (string, error) {
	data, err := MarshalJSONLD(v)
	if err != nil {
		return "", err
	}
	return `<script type="application/ld+json">` + string(data) + `</script>`, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
