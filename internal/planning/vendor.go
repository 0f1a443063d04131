package planning

import (
	"math"
	"sort"

	"github.com/andresuchdata/stockcast/internal/domain"
)

const (
	onTimeWeight   = 0.6
	leadTimeWeight = 0.4
)

// ScoreVendors aggregates PO delivery history into a reliability score per
// vendor. Vendors with no purchase orders at all are excluded; vendors with
// orders but no completed ones score zero on the delivery components. Output
// is sorted by reliability, best first.
func ScoreVendors(vendors []domain.Vendor, orders []domain.PurchaseOrder) []domain.VendorPerformance {
	byVendor := make(map[string][]domain.PurchaseOrder)
	for _, po := range orders {
		byVendor[po.VendorID] = append(byVendor[po.VendorID], po)
	}

	results := make([]domain.VendorPerformance, 0, len(vendors))
	for _, vendor := range vendors {
		vendorOrders := byVendor[vendor.ID]
		if len(vendorOrders) == 0 {
			continue
		}
		results = append(results, scoreVendor(vendor, vendorOrders))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ReliabilityScore != results[j].ReliabilityScore {
			return results[i].ReliabilityScore > results[j].ReliabilityScore
		}
		return results[i].VendorID < results[j].VendorID
	})

	return results
}

func scoreVendor(vendor domain.Vendor, orders []domain.PurchaseOrder) domain.VendorPerformance {
	var completed, onTime, withLeadTime int
	var leadTimeSum float64

	for _, po := range orders {
		if !domain.IsCompletedPOStatus(po.Status) {
			continue
		}
		completed++

		if po.ActualReceiveDate != nil && po.ExpectedDate != nil &&
			!po.ActualReceiveDate.After(*po.ExpectedDate) {
			onTime++
		}

		if po.ActualReceiveDate != nil {
			withLeadTime++
			leadTimeSum += po.ActualReceiveDate.Sub(po.OrderDate).Hours() / 24
		}
	}

	var onTimeRate float64
	if completed > 0 {
		onTimeRate = 100 * float64(onTime) / float64(completed)
	}

	var avgActualLeadTime float64
	if withLeadTime > 0 {
		avgActualLeadTime = leadTimeSum / float64(withLeadTime)
	}

	leadScore := 0.0
	if vendor.LeadTimeDays > 0 && avgActualLeadTime > 0 {
		leadScore = math.Min(100, float64(vendor.LeadTimeDays)/avgActualLeadTime*100)
	}

	return domain.VendorPerformance{
		VendorID:                 vendor.ID,
		VendorName:               vendor.Name,
		OnTimeDeliveryRate:       onTimeRate,
		AverageLeadTimeActual:    avgActualLeadTime,
		AverageLeadTimeEstimated: float64(vendor.LeadTimeDays),
		ReliabilityScore:         int(math.Round(onTimeRate*onTimeWeight + leadScore*leadTimeWeight)),
	}
}
