package handler

import (
	"agency/internal/catalog"
	"agency/internal/catalog/adapters"
)

// EventRequest is a package interaction reported by the site.
type EventRequest struct {
	Name   string `json:"name" validate:"required,oneof=package_viewed package_cta_clicked addon_viewed"`
	Slug   string `json:"slug" validate:"required,max=100"`
	CTA    string `json:"cta,omitempty" validate:"required_if=Name package_cta_clicked,max=64"`
	Source string `json:"source,omitempty" validate:"max=64"`
}

type GridResponse struct {
	Packages []adapters.PackageCard `json:"packages"`
}

type AddOnsResponse struct {
	AddOns []adapters.AddOnCard `json:"addOns"`
}

type ReloadResponse struct {
	Reloaded bool            `json:"reloaded"`
	Bundles  int             `json:"bundles,omitempty"`
	AddOns   int             `json:"addOns,omitempty"`
	Errors   []catalog.Issue `json:"errors"`
	Warnings []catalog.Issue `json:"warnings"`
}
