package planning

import (
	"fmt"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// Exploder walks the bill-of-materials graph to translate a finished good's
// demand forecast into gross requirement curves for every raw material it
// consumes.
type Exploder struct {
	boms map[string]domain.BillOfMaterials
}

// NewExploder indexes the snapshot's BOM set for traversal.
func NewExploder(boms []domain.BillOfMaterials) *Exploder {
	indexed := make(map[string]domain.BillOfMaterials, len(boms))
	for _, b := range boms {
		indexed[b.FinishedSKU] = b
	}
	return &Exploder{boms: indexed}
}

// explodeFrame is one pending traversal step. A leave frame pops its SKU off
// the current path once the whole subtree has been visited.
type explodeFrame struct {
	sku        string
	multiplier float64
	leave      bool
}

// Explode returns per-raw-material daily requirement curves for the given
// finished SKU, every level consuming in lockstep with the top-level
// forecast. Components reached via multiple paths accumulate. Cyclic
// branches are skipped and reported as warnings instead of recursing.
func (e *Exploder) Explode(finishedSKU string, multiplier float64, fc []domain.ForecastPoint) (map[string][]domain.RequirementPoint, []domain.PlanWarning) {
	requirements := make(map[string][]domain.RequirementPoint)
	var warnings []domain.PlanWarning

	root, ok := e.boms[finishedSKU]
	if !ok || len(fc) == 0 {
		return requirements, warnings
	}

	// Accumulate per-leaf quantities aligned to the forecast indices, then
	// materialize dated points at the end.
	accumulated := make(map[string][]float64)

	onPath := map[string]bool{finishedSKU: true}
	stack := make([]explodeFrame, 0, len(root.Components)+1)
	for i := len(root.Components) - 1; i >= 0; i-- {
		c := root.Components[i]
		stack = append(stack, explodeFrame{sku: c.SKU, multiplier: multiplier * c.Quantity})
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if frame.leave {
			delete(onPath, frame.sku)
			continue
		}

		if onPath[frame.sku] {
			warnings = append(warnings, domain.PlanWarning{
				Code:    domain.WarnBOMCycle,
				SKU:     frame.sku,
				Message: fmt.Sprintf("BOM cycle detected at %s while exploding %s; branch skipped", frame.sku, finishedSKU),
			})
			continue
		}

		bom, isAssembly := e.boms[frame.sku]
		if !isAssembly {
			// Raw material leaf.
			qtys := accumulated[frame.sku]
			if qtys == nil {
				qtys = make([]float64, len(fc))
				accumulated[frame.sku] = qtys
			}
			for i, point := range fc {
				qtys[i] += point.Quantity * frame.multiplier
			}
			continue
		}

		onPath[frame.sku] = true
		stack = append(stack, explodeFrame{sku: frame.sku, leave: true})
		for i := len(bom.Components) - 1; i >= 0; i-- {
			c := bom.Components[i]
			stack = append(stack, explodeFrame{sku: c.SKU, multiplier: frame.multiplier * c.Quantity})
		}
	}

	for sku, qtys := range accumulated {
		curve := make([]domain.RequirementPoint, len(fc))
		for i, point := range fc {
			curve[i] = domain.RequirementPoint{Date: point.Date, Quantity: qtys[i]}
		}
		requirements[sku] = curve
	}

	return requirements, warnings
}
