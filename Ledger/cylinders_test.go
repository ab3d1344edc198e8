package Ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GasTrack/Models"
)

func TestComputeCylinderDeltasNetsAllCategories(t *testing.T) {
	load := Models.LoadBreakdown{Kg6: 10, Kg13: 5, Kg50: 2}
	returns := Models.ReturnsBreakdown{
		MaxEmpty:   Models.PricedCounts{Kg6: 4, Kg13: 1},
		SwapEmpty:  Models.PricedCounts{Kg6: 1},
		ReturnFull: Models.UnpricedCounts{Kg13: 2},
	}
	outright := Models.PricedCounts{Kg50: 1}

	deltas := ComputeCylinderDeltas(load, returns, outright)
	assert.Equal(t, CylinderDeltas{Kg6: 5, Kg13: 2, Kg50: 1}, deltas)
	assert.Equal(t, 8, deltas.Total())
}

func TestComputeCylinderDeltasReturnFullCountsPhysically(t *testing.T) {
	// A full cylinder handed back carries no charge, but it still comes off
	// the customer's cylinder tab.
	returns := Models.ReturnsBreakdown{
		ReturnFull: Models.UnpricedCounts{Kg6: 4},
	}
	deltas := ComputeCylinderDeltas(Models.LoadBreakdown{}, returns, Models.PricedCounts{})
	assert.Equal(t, -4, deltas.Kg6)
	assert.Equal(t, -4, deltas.Total())
}

func TestTotalLoadAndReturns(t *testing.T) {
	load := Models.LoadBreakdown{Kg6: 3, Kg13: 2, Kg50: 1}
	returns := Models.ReturnsBreakdown{
		MaxEmpty:   Models.PricedCounts{Kg6: 1, Kg13: 1},
		SwapEmpty:  Models.PricedCounts{Kg50: 1},
		ReturnFull: Models.UnpricedCounts{Kg6: 2},
	}

	assert.Equal(t, 6, TotalLoad(load))
	assert.Equal(t, 5, TotalReturns(returns))
}
