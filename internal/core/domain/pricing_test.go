package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceTable_Cost(t *testing.T) {
	table := PriceTable{
		"vision-model": {InputPerMillion: 0.15, OutputPerMillion: 0.60},
		"embed-model":  {InputPerMillion: 0.15},
	}

	assert.InDelta(t, 0.15, table.Cost("vision-model", 1_000_000, 0), 1e-12)
	assert.InDelta(t, 0.60, table.Cost("vision-model", 0, 1_000_000), 1e-12)
	assert.InDelta(t, 0.75, table.Cost("vision-model", 1_000_000, 1_000_000), 1e-12)
	assert.InDelta(t, 0.000075, table.Cost("embed-model", 500, 0), 1e-12)
}

func TestPriceTable_Cost_UnknownModelIsFree(t *testing.T) {
	table := DefaultPriceTable()
	assert.Zero(t, table.Cost("made-up-model", 123456, 654321))
}

func TestDefaultPriceTable_CoversConfiguredModels(t *testing.T) {
	table := DefaultPriceTable()
	assert.Contains(t, table, "gemini-embedding-001")
	assert.Contains(t, table, "gemini-3-flash-preview")
	assert.Contains(t, table, "gemini-2.5-flash-lite")
}
