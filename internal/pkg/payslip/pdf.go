package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/payroll"
)

// line is one labelled amount row on the slip.
type line struct {
	label  string
	amount decimal.Decimal
}

// Render produces the payslip PDF for one payroll record. The caller joins
// in the employee name and code; amounts come straight off the record.
func Render(rec payroll.RecordResponse) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", rec.EmployeeName, rec.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %d", time.Month(rec.PeriodMonth), rec.PeriodYear))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Days: %d present, %d leave, %d absent of %d working",
		rec.PresentDays, rec.LeaveDays, rec.AbsentDays, rec.TotalWorkingDays))
	pdf.Ln(10)

	section(pdf, "Earnings", []line{
		{"Basic Salary", rec.BasicSalary},
		{"Allowances", rec.TotalAllowances},
		{"Overtime", rec.OvertimeAmount},
		{"Performance Bonus", rec.PerformanceBonus},
		{"Other Bonus", rec.OtherBonus},
	})
	totalRow(pdf, "Gross Pay", rec.GrossPay)
	pdf.Ln(4)

	deductions := []line{
		{fmt.Sprintf("Income Tax (%s)", rec.TaxSlabLabel), rec.IncomeTax},
		{"EOBI", rec.EOBI},
		{"Provident Fund", rec.ProvidentFund},
		{"Insurance", rec.Insurance},
		{"Pension", rec.Pension},
		{"Loan Repayment", rec.LoanDeduction},
		{"Unpaid Leave", rec.LeaveDeduction},
		{"Other Deductions", rec.OtherDeductions},
	}
	section(pdf, "Deductions", deductions)
	totalRow(pdf, "Total Deductions", rec.TotalDeductions)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	totalRow(pdf, "Net Pay", rec.NetPay)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string, lines []line) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		if l.amount.IsZero() {
			continue
		}
		pdf.Cell(120, 7, l.label)
		pdf.CellFormat(50, 7, "Rs "+l.amount.StringFixed(0), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
}

func totalRow(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.Cell(120, 8, label)
	pdf.CellFormat(50, 8, "Rs "+amount.StringFixed(0), "T", 0, "R", false, 0, "")
	pdf.Ln(8)
}
