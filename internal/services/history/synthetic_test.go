package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/domain/models"
	"CrediTech/pkg/config"
	"CrediTech/pkg/util"
)

func TestGenerate_ShapeAndRanges(t *testing.T) {
	gen := NewGenerator(util.NewRand(42), 1825, clock)
	cat := config.Category{Key: "veiculo-financiamento", BaseMin: 15, BaseWidth: 10}

	h := gen.Generate(cat)
	require.Equal(t, 1826, h.Len())
	assert.Equal(t, models.SourceSynthesized, h.Source)
	assert.Equal(t, util.Day(fixedNow).AddDate(0, 0, -1825), h.Observations[0].Date)
	last, _ := h.Last()
	assert.Equal(t, util.Day(fixedNow), last.Date)

	for i, o := range h.Observations {
		assert.GreaterOrEqual(t, o.Rate, 0.0)
		assert.InDelta(t, 10, o.PolicyRate, 3.0001)
		assert.GreaterOrEqual(t, o.PriceIndex, 4.0)
		assert.Less(t, o.PriceIndex, 6.0)
		// rate moves at most 0.8*3 + 0.5*2 around the base range
		assert.GreaterOrEqual(t, o.Rate, 15-2.4)
		assert.Less(t, o.Rate, 25+2.4+1)
		if i > 0 {
			assert.True(t, o.Date.After(h.Observations[i-1].Date))
		}
	}
}

func TestGenerate_UnknownCategoryUsesDefaultRange(t *testing.T) {
	h := NewGenerator(util.NewRand(1), 10, clock).Generate(config.Category{Key: "other"})
	for _, o := range h.Observations {
		assert.GreaterOrEqual(t, o.Rate, 20-2.4)
		assert.Less(t, o.Rate, 40+2.4+1)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := NewGenerator(util.NewRand(9), 20, clock).Generate(testCat)
	b := NewGenerator(util.NewRand(9), 20, clock).Generate(testCat)
	assert.Equal(t, a.Observations, b.Observations)
}
