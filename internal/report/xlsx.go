// Package report renders a computed plan into an xlsx workbook for
// distribution outside the dashboard.
package report

import (
	"bytes"
	"fmt"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/xuri/excelize/v2"
)

// BuildPlanWorkbook renders one workbook with Risks, Actions and Vendors
// sheets.
func BuildPlanWorkbook(plan *domain.PlanResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRisks(f, plan); err != nil {
		return nil, err
	}
	if err := writeActions(f, plan); err != nil {
		return nil, err
	}
	if err := writeVendors(f, plan); err != nil {
		return nil, err
	}

	// Drop the default sheet so Risks opens first.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}

// WritePlanWorkbook renders the workbook and saves it to path.
func WritePlanWorkbook(plan *domain.PlanResult, path string) error {
	buf, err := BuildPlanWorkbook(plan)
	if err != nil {
		return err
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("failed to reopen workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook to %s: %w", path, err)
	}
	return nil
}

func writeRisks(f *excelize.File, plan *domain.PlanResult) error {
	const sheet = "Risks"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheet, err)
	}

	headers := []interface{}{"SKU", "Name", "Days Until Stockout", "Risk Level", "Trend", "Growth %", "Lead Time Days", "Reorder Point", "Vendor"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, r := range plan.Risks {
		row := []interface{}{
			r.SKU, r.Name, r.DaysUntilStockout, string(r.RiskLevel),
			string(r.TrendMetrics.Direction), r.TrendMetrics.GrowthRate,
			r.LeadTimeDays, r.ReorderPoint, r.VendorID,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeActions(f *excelize.File, plan *domain.PlanResult) error {
	const sheet = "Actions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheet, err)
	}

	headers := []interface{}{"Priority", "Type", "SKU", "Name", "Quantity", "Action Date", "Vendor", "Est. Cost", "Reason"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, a := range plan.Actions {
		row := []interface{}{
			string(a.Priority), string(a.Type), a.SKU, a.Name, a.Quantity,
			a.ActionDate.Format("2006-01-02"), a.VendorID,
			a.EstimatedCost.String(), a.Reason,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeVendors(f *excelize.File, plan *domain.PlanResult) error {
	const sheet = "Vendors"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheet, err)
	}

	headers := []interface{}{"Vendor", "Name", "On-Time %", "Avg Lead (actual)", "Avg Lead (quoted)", "Reliability"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, v := range plan.Vendors {
		row := []interface{}{
			v.VendorID, v.VendorName, v.OnTimeDeliveryRate,
			v.AverageLeadTimeActual, v.AverageLeadTimeEstimated, v.ReliabilityScore,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
