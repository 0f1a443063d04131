package planning

import (
	"testing"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

func datePtr(t time.Time) *time.Time { return &t }

// po builds a completed order placed on orderDay with the given expected and
// actual lead times in days.
func po(vendorID string, orderDay time.Time, expectedDays, actualDays int) domain.PurchaseOrder {
	return domain.PurchaseOrder{
		VendorID:          vendorID,
		Status:            "received",
		OrderDate:         orderDay,
		ExpectedDate:      datePtr(orderDay.AddDate(0, 0, expectedDays)),
		ActualReceiveDate: datePtr(orderDay.AddDate(0, 0, actualDays)),
	}
}

func TestScoreVendors_WorkedExample(t *testing.T) {
	// onTimeRate 80 (4 of 5 on time), avgActualLeadTime 12, vendor lead 10:
	// round(80*0.6 + min(100, 10/12*100)*0.4) = round(48 + 33.33) = 81.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vendor := domain.Vendor{ID: "V1", Name: "Acme", LeadTimeDays: 10}

	orders := []domain.PurchaseOrder{
		po("V1", base, 12, 12),
		po("V1", base.AddDate(0, 0, 10), 12, 12),
		po("V1", base.AddDate(0, 0, 20), 12, 12),
		po("V1", base.AddDate(0, 0, 30), 12, 12),
		po("V1", base.AddDate(0, 0, 40), 11, 12), // one day late
	}

	perf := ScoreVendors([]domain.Vendor{vendor}, orders)
	if len(perf) != 1 {
		t.Fatalf("expected one vendor, got %d", len(perf))
	}
	p := perf[0]
	if p.OnTimeDeliveryRate != 80 {
		t.Errorf("onTimeRate = %v, want 80", p.OnTimeDeliveryRate)
	}
	if p.AverageLeadTimeActual != 12 {
		t.Errorf("avgActualLeadTime = %v, want 12", p.AverageLeadTimeActual)
	}
	if p.ReliabilityScore != 81 {
		t.Errorf("reliabilityScore = %d, want 81", p.ReliabilityScore)
	}
}

func TestScoreVendors_NoOrdersExcluded(t *testing.T) {
	vendors := []domain.Vendor{
		{ID: "V1", LeadTimeDays: 10},
		{ID: "IDLE", LeadTimeDays: 5},
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	perf := ScoreVendors(vendors, []domain.PurchaseOrder{po("V1", base, 10, 9)})

	if len(perf) != 1 || perf[0].VendorID != "V1" {
		t.Errorf("vendor with zero orders must be excluded, got %+v", perf)
	}
}

func TestScoreVendors_PendingOrdersOnlyScoreZero(t *testing.T) {
	vendor := domain.Vendor{ID: "V1", LeadTimeDays: 10}
	orders := []domain.PurchaseOrder{
		{VendorID: "V1", Status: "sent", OrderDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	perf := ScoreVendors([]domain.Vendor{vendor}, orders)
	if len(perf) != 1 {
		t.Fatalf("vendor with pending orders stays in output, got %d rows", len(perf))
	}
	if perf[0].ReliabilityScore != 0 || perf[0].OnTimeDeliveryRate != 0 {
		t.Errorf("no completed orders must score zero, got %+v", perf[0])
	}
}

func TestScoreVendors_SortedByReliability(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vendors := []domain.Vendor{
		{ID: "SLOW", LeadTimeDays: 10},
		{ID: "FAST", LeadTimeDays: 10},
	}
	orders := []domain.PurchaseOrder{
		po("SLOW", base, 10, 20),
		po("FAST", base, 10, 8),
	}

	perf := ScoreVendors(vendors, orders)
	if len(perf) != 2 {
		t.Fatalf("expected two vendors, got %d", len(perf))
	}
	for i := 1; i < len(perf); i++ {
		if perf[i].ReliabilityScore > perf[i-1].ReliabilityScore {
			t.Fatalf("reliability order violated: %+v", perf)
		}
	}
	if perf[0].VendorID != "FAST" {
		t.Errorf("best vendor = %s, want FAST", perf[0].VendorID)
	}
}

func TestScoreVendors_FulfilledCountsAsCompleted(t *testing.T) {
	vendor := domain.Vendor{ID: "V1", LeadTimeDays: 10}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	order := po("V1", base, 10, 10)
	order.Status = "Fulfilled"

	perf := ScoreVendors([]domain.Vendor{vendor}, []domain.PurchaseOrder{order})
	if len(perf) != 1 || perf[0].OnTimeDeliveryRate != 100 {
		t.Errorf("Fulfilled status must count as completed, got %+v", perf)
	}
}
