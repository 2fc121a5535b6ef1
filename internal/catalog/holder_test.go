package catalog

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agency/pkg/domain-errors"
)

const validYAML = `bundles:
  - id: a
    slug: alpha
    name: Alpha
    service: seo
    summary: s
    outcomes: [more traffic]
    price:
      oneTime: 1000
    includes:
      - title: Work
        items: [Audit]
`

func TestHolderReload(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{"bundles.yaml": {Data: []byte(validYAML)}}

	h, report, err := LoadHolder(ctx, fsys)
	require.NoError(t, err)
	assert.True(t, report.OK())
	require.Len(t, h.Current().Bundles, 1)

	t.Run("invalid catalog keeps the current one", func(t *testing.T) {
		fsys["dupe.yaml"] = &fstest.MapFile{Data: []byte(validYAML)}
		defer delete(fsys, "dupe.yaml")

		report, err := h.Reload(ctx)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.NotEmpty(t, report.Errors)
		assert.Len(t, h.Current().Bundles, 1)
	})

	t.Run("undecodable catalog keeps the current one", func(t *testing.T) {
		fsys["broken.yaml"] = &fstest.MapFile{Data: []byte("bundles: [")}
		defer delete(fsys, "broken.yaml")

		_, err := h.Reload(ctx)
		require.Error(t, err)
		assert.Len(t, h.Current().Bundles, 1)
	})

	t.Run("valid change is swapped in", func(t *testing.T) {
		fsys["more.yaml"] = &fstest.MapFile{Data: []byte(
			"addOns:\n  - id: extra\n    name: Extra\n    priceNote: Ask us\n")}

		_, err := h.Reload(ctx)
		require.NoError(t, err)
		assert.Len(t, h.Current().AddOns, 1)
	})
}
