package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	dErrors "agency/pkg/domain-errors"
)

// Holder serves the live catalog and swaps it atomically on reload. A reload
// that fails to load or validate leaves the current catalog in place.
type Holder struct {
	mu      sync.RWMutex
	current *Catalog
	source  fs.FS
}

// NewHolder wraps an already validated catalog. source is re-read on Reload.
func NewHolder(initial *Catalog, source fs.FS) *Holder {
	return &Holder{current: initial, source: source}
}

// LoadHolder loads and validates source, failing on any validation error.
func LoadHolder(ctx context.Context, source fs.FS) (*Holder, ValidationReport, error) {
	h := &Holder{source: source}
	report, err := h.Reload(ctx)
	if err != nil {
		return nil, report, err
	}
	return h, report, nil
}

// Current returns the live catalog. Callers must not mutate it.
func (h *Holder) Current() *Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload re-reads the source. The returned report is populated even when the
// reload is rejected.
func (h *Holder) Reload(ctx context.Context) (ValidationReport, error) {
	c, err := Load(ctx, h.source)
	if err != nil {
		return ValidationReport{}, dErrors.Wrap(err, dErrors.CodeValidation, "catalog failed to load")
	}
	report := Validate(c)
	if !report.OK() {
		return report, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("catalog has %d error(s)", len(report.Errors)))
	}

	h.mu.Lock()
	h.current = c
	h.mu.Unlock()
	return report, nil
}
