package Ledger

import (
	"GasTrack/Models"

	"github.com/shopspring/decimal"
)

// Cylinder sizes in kg handled by the ledger.
const (
	Size6kg  = 6
	Size13kg = 13
	Size50kg = 50
)

// PriceTable is the single place where missing prices are defaulted. Refill
// and swap prices are per kg; outright prices are per cylinder. A zero or
// missing price on a transaction falls back to this table, which keeps older
// records without explicit prices billable.
type PriceTable struct {
	RefillPerKg         map[int]decimal.Decimal
	SwapPerKg           map[int]decimal.Decimal
	OutrightPerCylinder map[int]decimal.Decimal
}

// DefaultPriceTable returns the standard rates: 135/kg for refills, 160/kg
// for swaps, and 3200/3500/8500 per cylinder for outright sales.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		RefillPerKg: map[int]decimal.Decimal{
			Size6kg:  decimal.NewFromInt(135),
			Size13kg: decimal.NewFromInt(135),
			Size50kg: decimal.NewFromInt(135),
		},
		SwapPerKg: map[int]decimal.Decimal{
			Size6kg:  decimal.NewFromInt(160),
			Size13kg: decimal.NewFromInt(160),
			Size50kg: decimal.NewFromInt(160),
		},
		OutrightPerCylinder: map[int]decimal.Decimal{
			Size6kg:  decimal.NewFromInt(3200),
			Size13kg: decimal.NewFromInt(3500),
			Size50kg: decimal.NewFromInt(8500),
		},
	}
}

// PriceTableFromConfig starts from the defaults and applies any overrides set
// in the environment.
func PriceTableFromConfig(cfg Models.Config) PriceTable {
	table := DefaultPriceTable()

	if price, err := decimal.NewFromString(cfg.RefillPricePerKg); err == nil && price.IsPositive() {
		for _, size := range []int{Size6kg, Size13kg, Size50kg} {
			table.RefillPerKg[size] = price
		}
	}
	if price, err := decimal.NewFromString(cfg.SwapPricePerKg); err == nil && price.IsPositive() {
		for _, size := range []int{Size6kg, Size13kg, Size50kg} {
			table.SwapPerKg[size] = price
		}
	}
	if price, err := decimal.NewFromString(cfg.OutrightPrice6kg); err == nil && price.IsPositive() {
		table.OutrightPerCylinder[Size6kg] = price
	}
	if price, err := decimal.NewFromString(cfg.OutrightPrice13kg); err == nil && price.IsPositive() {
		table.OutrightPerCylinder[Size13kg] = price
	}
	if price, err := decimal.NewFromString(cfg.OutrightPrice50kg); err == nil && price.IsPositive() {
		table.OutrightPerCylinder[Size50kg] = price
	}

	return table
}

func (p PriceTable) pick(given decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if given.IsPositive() {
		return given
	}
	return fallback
}

// TotalBill prices one transaction. Refill and swap returns are billed by
// weight (count x size-in-kg x price-per-kg); return_full entries carry no
// charge; outright sales are billed per cylinder. The result is rounded
// half-up to two decimals exactly once, at the final total, so per-line
// rounding drift cannot accumulate.
func (p PriceTable) TotalBill(returns Models.ReturnsBreakdown, outright Models.PricedCounts) decimal.Decimal {
	total := decimal.Zero

	// Refills (max_empty), per kg
	total = total.Add(weightCharge(returns.MaxEmpty.Kg6, Size6kg, p.pick(returns.MaxEmpty.Price6, p.RefillPerKg[Size6kg])))
	total = total.Add(weightCharge(returns.MaxEmpty.Kg13, Size13kg, p.pick(returns.MaxEmpty.Price13, p.RefillPerKg[Size13kg])))
	total = total.Add(weightCharge(returns.MaxEmpty.Kg50, Size50kg, p.pick(returns.MaxEmpty.Price50, p.RefillPerKg[Size50kg])))

	// Swaps (other-company cylinders), per kg
	total = total.Add(weightCharge(returns.SwapEmpty.Kg6, Size6kg, p.pick(returns.SwapEmpty.Price6, p.SwapPerKg[Size6kg])))
	total = total.Add(weightCharge(returns.SwapEmpty.Kg13, Size13kg, p.pick(returns.SwapEmpty.Price13, p.SwapPerKg[Size13kg])))
	total = total.Add(weightCharge(returns.SwapEmpty.Kg50, Size50kg, p.pick(returns.SwapEmpty.Price50, p.SwapPerKg[Size50kg])))

	// Outright sales, per cylinder
	total = total.Add(unitCharge(outright.Kg6, p.pick(outright.Price6, p.OutrightPerCylinder[Size6kg])))
	total = total.Add(unitCharge(outright.Kg13, p.pick(outright.Price13, p.OutrightPerCylinder[Size13kg])))
	total = total.Add(unitCharge(outright.Kg50, p.pick(outright.Price50, p.OutrightPerCylinder[Size50kg])))

	return total.Round(2)
}

func weightCharge(count, sizeKg int, pricePerKg decimal.Decimal) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count * sizeKg)).Mul(pricePerKg)
}

func unitCharge(count int, pricePerCylinder decimal.Decimal) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).Mul(pricePerCylinder)
}
