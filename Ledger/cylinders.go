package Ledger

import (
	"GasTrack/Models"
)

// CylinderDeltas is the net change per size in cylinders the customer holds.
// Positive means the customer took out more than they brought back or bought.
type CylinderDeltas struct {
	Kg6  int
	Kg13 int
	Kg50 int
}

func (d CylinderDeltas) Total() int {
	return d.Kg6 + d.Kg13 + d.Kg50
}

// ComputeCylinderDeltas nets a transaction's physical cylinder movement:
// load minus (all return categories plus outright) per size. Unlike pricing,
// return_full counts here; a full cylinder handed back is still a cylinder
// off the customer's tab.
func ComputeCylinderDeltas(load Models.LoadBreakdown, returns Models.ReturnsBreakdown, outright Models.PricedCounts) CylinderDeltas {
	return CylinderDeltas{
		Kg6:  load.Kg6 - (returns.MaxEmpty.Kg6 + returns.SwapEmpty.Kg6 + returns.ReturnFull.Kg6 + outright.Kg6),
		Kg13: load.Kg13 - (returns.MaxEmpty.Kg13 + returns.SwapEmpty.Kg13 + returns.ReturnFull.Kg13 + outright.Kg13),
		Kg50: load.Kg50 - (returns.MaxEmpty.Kg50 + returns.SwapEmpty.Kg50 + returns.ReturnFull.Kg50 + outright.Kg50),
	}
}

// TotalLoad counts all cylinders the customer took out.
func TotalLoad(load Models.LoadBreakdown) int {
	return load.Kg6 + load.Kg13 + load.Kg50
}

// TotalReturns counts all cylinders the customer brought in, across every
// return category.
func TotalReturns(returns Models.ReturnsBreakdown) int {
	return returns.MaxEmpty.Kg6 + returns.MaxEmpty.Kg13 + returns.MaxEmpty.Kg50 +
		returns.SwapEmpty.Kg6 + returns.SwapEmpty.Kg13 + returns.SwapEmpty.Kg50 +
		returns.ReturnFull.Kg6 + returns.ReturnFull.Kg13 + returns.ReturnFull.Kg50
}
