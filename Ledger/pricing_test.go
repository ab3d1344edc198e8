package Ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"GasTrack/Models"
)

func TestTotalBillRefillByWeight(t *testing.T) {
	prices := DefaultPriceTable()

	// 2 x 6kg refills at 135/kg = 2 * 6 * 135 = 1620
	returns := Models.ReturnsBreakdown{
		MaxEmpty: Models.PricedCounts{Kg6: 2},
	}
	total := prices.TotalBill(returns, Models.PricedCounts{})
	assert.True(t, total.Equal(decimal.NewFromInt(1620)), "got %s", total)
}

func TestTotalBillSwapByWeight(t *testing.T) {
	prices := DefaultPriceTable()

	// 1 x 13kg swap at 160/kg = 13 * 160 = 2080
	returns := Models.ReturnsBreakdown{
		SwapEmpty: Models.PricedCounts{Kg13: 1},
	}
	total := prices.TotalBill(returns, Models.PricedCounts{})
	assert.True(t, total.Equal(decimal.NewFromInt(2080)), "got %s", total)
}

func TestTotalBillOutrightPerCylinder(t *testing.T) {
	prices := DefaultPriceTable()

	// 3 x 13kg outright at 3500 each = 10500
	outright := Models.PricedCounts{Kg13: 3}
	total := prices.TotalBill(Models.ReturnsBreakdown{}, outright)
	assert.True(t, total.Equal(decimal.NewFromInt(10500)), "got %s", total)
}

func TestTotalBillReturnFullIsFree(t *testing.T) {
	prices := DefaultPriceTable()

	returns := Models.ReturnsBreakdown{
		ReturnFull: Models.UnpricedCounts{Kg6: 3, Kg13: 2, Kg50: 1},
	}
	total := prices.TotalBill(returns, Models.PricedCounts{})
	assert.True(t, total.IsZero(), "return_full must not be billed, got %s", total)
}

func TestTotalBillExplicitPriceOverridesDefault(t *testing.T) {
	prices := DefaultPriceTable()

	// Explicit 140/kg on a 6kg refill: 2 * 6 * 140 = 1680
	returns := Models.ReturnsBreakdown{
		MaxEmpty: Models.PricedCounts{Kg6: 2, Price6: decimal.NewFromInt(140)},
	}
	total := prices.TotalBill(returns, Models.PricedCounts{})
	assert.True(t, total.Equal(decimal.NewFromInt(1680)), "got %s", total)
}

func TestTotalBillZeroPriceFallsBackToDefault(t *testing.T) {
	prices := DefaultPriceTable()

	returns := Models.ReturnsBreakdown{
		MaxEmpty: Models.PricedCounts{Kg6: 1, Price6: decimal.Zero},
	}
	total := prices.TotalBill(returns, Models.PricedCounts{})
	assert.True(t, total.Equal(decimal.NewFromInt(810)), "got %s", total)
}

func TestTotalBillMixedRoundsOnceAtTheEnd(t *testing.T) {
	prices := DefaultPriceTable()

	// Fractional per-kg price that would drift if rounded per line:
	// 3 * 6 * 135.555 = 2439.99, 1 * 13 * 135.555 = 1762.215
	// sum = 4202.205 -> rounded half-up once = 4202.21
	price := decimal.RequireFromString("135.555")
	returns := Models.ReturnsBreakdown{
		MaxEmpty: Models.PricedCounts{Kg6: 3, Kg13: 1, Price6: price, Price13: price},
	}
	total := prices.TotalBill(returns, Models.PricedCounts{})
	assert.Equal(t, "4202.21", total.StringFixed(2))
}

func TestTotalBillDeterministic(t *testing.T) {
	prices := DefaultPriceTable()
	returns := Models.ReturnsBreakdown{
		MaxEmpty:  Models.PricedCounts{Kg6: 2, Kg13: 1},
		SwapEmpty: Models.PricedCounts{Kg50: 1},
	}
	outright := Models.PricedCounts{Kg6: 1}

	first := prices.TotalBill(returns, outright)
	for i := 0; i < 10; i++ {
		assert.True(t, first.Equal(prices.TotalBill(returns, outright)))
	}
}
