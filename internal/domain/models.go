// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoVendor is the sentinel vendor id meaning "no actionable vendor".
const NoVendor = "N/A"

// InventoryItem is one catalog row from the inventory sync. The planning
// engine only ever reads a snapshot of these; mutation happens in sync jobs.
type InventoryItem struct {
	SKU              string          `json:"sku" db:"sku"`
	Name             string          `json:"name" db:"name"`
	Stock            int             `json:"stock" db:"stock"`
	OnOrder          int             `json:"on_order" db:"on_order"`
	SalesLast30Days  float64         `json:"sales_last_30_days" db:"sales_last_30_days"`
	SalesLast90Days  float64         `json:"sales_last_90_days" db:"sales_last_90_days"`
	SalesLast180Days float64         `json:"sales_last_180_days" db:"sales_last_180_days"`
	LeadTimeDays     int             `json:"lead_time_days" db:"lead_time_days"`
	ReorderPoint     float64         `json:"reorder_point" db:"reorder_point"`
	MOQ              int             `json:"moq" db:"moq"`
	VendorID         string          `json:"vendor_id" db:"vendor_id"`
	UnitCost         decimal.Decimal `json:"unit_cost" db:"unit_cost"`
}

// HasVendor reports whether the item has an actionable vendor reference.
func (i InventoryItem) HasVendor() bool {
	return i.VendorID != "" && i.VendorID != NoVendor
}

// BOMComponent is one line of a bill of materials: quantity units of
// a component consumed per one finished unit.
type BOMComponent struct {
	SKU      string  `json:"sku" db:"component_sku"`
	Quantity float64 `json:"quantity" db:"quantity"`
}

// BillOfMaterials lists the components of one finished good. A component
// SKU may itself be a finished SKU in another BOM (sub-assembly).
type BillOfMaterials struct {
	FinishedSKU string         `json:"finished_sku" db:"finished_sku"`
	Components  []BOMComponent `json:"components"`
}

// HistoricalSale is one row of the append-only sales log.
type HistoricalSale struct {
	SKU      string    `json:"sku" db:"sku"`
	Date     time.Time `json:"date" db:"sale_date"`
	Quantity float64   `json:"quantity" db:"quantity"`
}

// Vendor is a supplier master record.
type Vendor struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	LeadTimeDays int    `json:"lead_time_days" db:"lead_time_days"`
}

// PurchaseOrder is one PO header used for vendor performance scoring.
type PurchaseOrder struct {
	ID                string          `json:"id" db:"id"`
	VendorID          string          `json:"vendor_id" db:"vendor_id"`
	Status            string          `json:"status" db:"status"`
	OrderDate         time.Time       `json:"order_date" db:"order_date"`
	ExpectedDate      *time.Time      `json:"expected_date" db:"expected_date"`
	ActualReceiveDate *time.Time      `json:"actual_receive_date" db:"actual_receive_date"`
	TotalAmount       decimal.Decimal `json:"total_amount" db:"total_amount"`
}

// Snapshot is the immutable input set for one planning run. Everything the
// engine computes is derived fresh from a Snapshot; nothing is written back.
type Snapshot struct {
	Items          []InventoryItem   `json:"items"`
	Sales          []HistoricalSale  `json:"sales"`
	BOMs           []BillOfMaterials `json:"boms"`
	Vendors        []Vendor          `json:"vendors"`
	PurchaseOrders []PurchaseOrder   `json:"purchase_orders"`
	TakenAt        time.Time         `json:"taken_at"`
}

// ItemBySKU builds a lookup map over the snapshot's inventory items.
func (s *Snapshot) ItemBySKU() map[string]InventoryItem {
	m := make(map[string]InventoryItem, len(s.Items))
	for _, it := range s.Items {
		m[it.SKU] = it
	}
	return m
}

// BOMBySKU builds a lookup map over the snapshot's bills of materials.
func (s *Snapshot) BOMBySKU() map[string]BillOfMaterials {
	m := make(map[string]BillOfMaterials, len(s.BOMs))
	for _, b := range s.BOMs {
		m[b.FinishedSKU] = b
	}
	return m
}

// SalesBySKU groups the sales log by SKU, preserving input order.
func (s *Snapshot) SalesBySKU() map[string][]HistoricalSale {
	m := make(map[string][]HistoricalSale)
	for _, sale := range s.Sales {
		m[sale.SKU] = append(m[sale.SKU], sale)
	}
	return m
}

// VendorByID builds a lookup map over the snapshot's vendors.
func (s *Snapshot) VendorByID() map[string]Vendor {
	m := make(map[string]Vendor, len(s.Vendors))
	for _, v := range s.Vendors {
		m[v.ID] = v
	}
	return m
}
