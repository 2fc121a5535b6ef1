package models

// DefaultItems is the consent catalog presented to new visitors.
func DefaultItems() []Item {
	return []Item{
		{
			ID:            "necessary-cookies",
			Type:          ItemTypeRequired,
			Label:         "Strictly necessary cookies",
			Description:   "Session and security cookies the site cannot work without.",
			Required:      true,
			Status:        StatusPending,
			PolicyType:    "cookies",
			PolicyVersion: "2024-01",
			LegalBasis:    "legitimate-interest",
		},
		{
			ID:            "privacy-policy",
			Type:          ItemTypeRequired,
			Label:         "Privacy policy",
			Description:   "How we collect, use and store personal data.",
			Required:      true,
			Status:        StatusPending,
			PolicyType:    "privacy",
			PolicyVersion: "2024-03",
			LegalBasis:    "consent",
		},
		{
			ID:            "terms-of-service",
			Type:          ItemTypeRequired,
			Label:         "Terms of service",
			Required:      true,
			Status:        StatusPending,
			PolicyType:    "terms",
			PolicyVersion: "2024-03",
			LegalBasis:    "contract",
		},
		{
			ID:            "analytics-cookies",
			Type:          ItemTypeOptional,
			Label:         "Analytics cookies",
			Description:   "Anonymous usage statistics that help us improve the site.",
			Status:        StatusPending,
			PolicyType:    "analytics",
			PolicyVersion: "2024-01",
			LegalBasis:    "consent",
			ValidityDays:  365,
		},
		{
			ID:            "marketing-emails",
			Type:          ItemTypeOptional,
			Label:         "Marketing emails",
			Description:   "Occasional case studies and offers.",
			Status:        StatusPending,
			PolicyType:    "marketing",
			PolicyVersion: "2024-01",
			LegalBasis:    "consent",
			ValidityDays:  365,
		},
		{
			ID:            "personalization",
			Type:          ItemTypeOptional,
			Label:         "Personalized recommendations",
			Description:   "Package suggestions based on pages you viewed.",
			Status:        StatusPending,
			PolicyType:    "personalization",
			PolicyVersion: "2024-01",
			LegalBasis:    "consent",
			ValidityDays:  180,
		},
		{
			ID:            "data-processing-notice",
			Type:          ItemTypeInformational,
			Label:         "Data processing notice",
			Description:   "Contact form submissions are processed to answer your enquiry.",
			Status:        StatusNotApplicable,
			PolicyType:    "processing",
			PolicyVersion: "2024-01",
			LegalBasis:    "legitimate-interest",
		},
	}
}

// Reconcile lays stored decisions over the current catalog. Catalog fields
// (labels, required flags, policy versions) always win. A stored decision is
// kept only while its policy version matches; otherwise the item returns to
// its catalog status so the visitor is asked again. Stored items no longer in
// the catalog are dropped.
func Reconcile(catalog, stored []Item) []Item {
	byID := make(map[string]Item, len(stored))
	for _, item := range stored {
		byID[item.ID] = item
	}

	out := make([]Item, 0, len(catalog))
	for _, item := range catalog {
		prev, ok := byID[item.ID]
		if ok && prev.PolicyVersion == item.PolicyVersion && prev.Status.IsValid() &&
			!(item.Required && prev.Status == StatusDeclined) {
			item.Status = prev.Status
			item.ExpiresAt = prev.ExpiresAt
			item.UpdatedAt = prev.UpdatedAt
		}
		out = append(out, item)
	}
	return out
}
