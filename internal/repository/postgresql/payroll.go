package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tajhr/hrpay-backend-go/internal/domain/payroll"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const payrollColumns = `
	p.id, p.employee_id, p.period_month, p.period_year,
	p.basic_salary, p.total_allowances, p.overtime_hours, p.overtime_rate,
	p.overtime_amount, p.performance_bonus, p.other_bonus, p.gross_pay,
	p.income_tax, p.tax_slab_label, p.insurance, p.pension, p.eobi,
	p.provident_fund, p.loan_deduction, p.leave_deduction, p.other_deductions,
	p.total_deductions, p.net_pay,
	p.present_days, p.absent_days, p.leave_days, p.unpaid_leave_days,
	p.total_working_days, p.manual_overrides, p.status, p.paid_at,
	p.created_at, p.updated_at
`

func scanPayroll(row pgx.Row, joined bool) (payroll.Record, error) {
	var rec payroll.Record
	var overrides []string

	dest := []interface{}{
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear,
		&rec.BasicSalary, &rec.TotalAllowances, &rec.OvertimeHours, &rec.OvertimeRate,
		&rec.OvertimeAmount, &rec.PerformanceBonus, &rec.OtherBonus, &rec.GrossPay,
		&rec.IncomeTax, &rec.TaxSlabLabel, &rec.Insurance, &rec.Pension, &rec.EOBI,
		&rec.ProvidentFund, &rec.LoanDeduction, &rec.LeaveDeduction, &rec.OtherDeductions,
		&rec.TotalDeductions, &rec.NetPay,
		&rec.PresentDays, &rec.AbsentDays, &rec.LeaveDays, &rec.UnpaidLeaveDays,
		&rec.TotalWorkingDays, &overrides, &rec.Status, &rec.PaidAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
	if joined {
		dest = append(dest, &rec.EmployeeName, &rec.EmployeeCode)
	}

	if err := row.Scan(dest...); err != nil {
		return payroll.Record{}, err
	}

	for _, o := range overrides {
		rec.ManualOverrides = append(rec.ManualOverrides, payroll.ManualField(o))
	}
	return rec, nil
}

func overrideStrings(rec payroll.Record) []string {
	out := make([]string, 0, len(rec.ManualOverrides))
	for _, m := range rec.ManualOverrides {
		out = append(out, string(m))
	}
	return out
}

// Upsert implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) Upsert(ctx context.Context, rec payroll.Record) (payroll.Record, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO payroll_records AS p (
			employee_id, period_month, period_year,
			basic_salary, total_allowances, overtime_hours, overtime_rate,
			overtime_amount, performance_bonus, other_bonus, gross_pay,
			income_tax, tax_slab_label, insurance, pension, eobi,
			provident_fund, loan_deduction, leave_deduction, other_deductions,
			total_deductions, net_pay,
			present_days, absent_days, leave_days, unpaid_leave_days,
			total_working_days, manual_overrides, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
		)
		ON CONFLICT (employee_id, period_month, period_year) DO UPDATE SET
			basic_salary = EXCLUDED.basic_salary,
			total_allowances = EXCLUDED.total_allowances,
			overtime_hours = EXCLUDED.overtime_hours,
			overtime_rate = EXCLUDED.overtime_rate,
			overtime_amount = EXCLUDED.overtime_amount,
			performance_bonus = EXCLUDED.performance_bonus,
			other_bonus = EXCLUDED.other_bonus,
			gross_pay = EXCLUDED.gross_pay,
			income_tax = EXCLUDED.income_tax,
			tax_slab_label = EXCLUDED.tax_slab_label,
			insurance = EXCLUDED.insurance,
			pension = EXCLUDED.pension,
			eobi = EXCLUDED.eobi,
			provident_fund = EXCLUDED.provident_fund,
			loan_deduction = EXCLUDED.loan_deduction,
			leave_deduction = EXCLUDED.leave_deduction,
			other_deductions = EXCLUDED.other_deductions,
			total_deductions = EXCLUDED.total_deductions,
			net_pay = EXCLUDED.net_pay,
			present_days = EXCLUDED.present_days,
			absent_days = EXCLUDED.absent_days,
			leave_days = EXCLUDED.leave_days,
			unpaid_leave_days = EXCLUDED.unpaid_leave_days,
			total_working_days = EXCLUDED.total_working_days,
			manual_overrides = EXCLUDED.manual_overrides,
			updated_at = NOW()
		WHERE p.status = 'draft'
		RETURNING ` + payrollColumns

	saved, err := scanPayroll(q.QueryRow(ctx, query,
		rec.EmployeeID, rec.PeriodMonth, rec.PeriodYear,
		rec.BasicSalary, rec.TotalAllowances, rec.OvertimeHours, rec.OvertimeRate,
		rec.OvertimeAmount, rec.PerformanceBonus, rec.OtherBonus, rec.GrossPay,
		rec.IncomeTax, rec.TaxSlabLabel, rec.Insurance, rec.Pension, rec.EOBI,
		rec.ProvidentFund, rec.LoanDeduction, rec.LeaveDeduction, rec.OtherDeductions,
		rec.TotalDeductions, rec.NetPay,
		rec.PresentDays, rec.AbsentDays, rec.LeaveDays, rec.UnpaidLeaveDays,
		rec.TotalWorkingDays, overrideStrings(rec), rec.Status,
	), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Record{}, payroll.ErrRecordAlreadyPaid
		}
		return payroll.Record{}, fmt.Errorf("failed to upsert payroll record: %w", err)
	}

	return saved, nil
}

// GetByID implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Record, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + payrollColumns + `, e.first_name || ' ' || e.last_name, e.employee_code
		FROM payroll_records p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1
	`

	rec, err := scanPayroll(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Record{}, payroll.ErrRecordNotFound
		}
		return payroll.Record{}, fmt.Errorf("failed to get payroll record %s: %w", id, err)
	}

	return rec, nil
}

// GetByEmployeePeriod implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Record, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payroll_records p
		WHERE p.employee_id = $1 AND p.period_month = $2 AND p.period_year = $3
	`

	rec, err := scanPayroll(q.QueryRow(ctx, query, employeeID, month, year), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Record{}, payroll.ErrRecordNotFound
		}
		return payroll.Record{}, fmt.Errorf("failed to get payroll for employee %s period %d/%d: %w",
			employeeID, month, year, err)
	}

	return rec, nil
}

// List implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) List(ctx context.Context, filter payroll.Filter) ([]payroll.Record, int64, error) {
	q := GetQuerier(ctx, p.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	add := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argIdx))
		args = append(args, value)
		argIdx++
	}

	if filter.PeriodMonth != nil {
		add("p.period_month = $%d", *filter.PeriodMonth)
	}
	if filter.PeriodYear != nil {
		add("p.period_year = $%d", *filter.PeriodYear)
	}
	if filter.Status != nil {
		add("p.status = $%d", *filter.Status)
	}
	if filter.EmployeeID != nil {
		add("p.employee_id = $%d", *filter.EmployeeID)
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM payroll_records p WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	query := `
		SELECT ` + payrollColumns + `, e.first_name || ' ' || e.last_name, e.employee_code
		FROM payroll_records p
		JOIN employees e ON e.id = p.employee_id
		WHERE ` + where + `
		ORDER BY p.period_year DESC, p.period_month DESC, e.employee_code` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.Record
	for rows.Next() {
		rec, err := scanPayroll(rows, true)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// UpdateManualFields implements payroll.PayrollRepository. Rewrites the
// monetary fields and provenance of a draft record after a manual edit.
func (p *payrollRepositoryImpl) UpdateManualFields(ctx context.Context, rec payroll.Record) error {
	q := GetQuerier(ctx, p.db)

	query := `
		UPDATE payroll_records
		SET overtime_hours = $1, overtime_rate = $2, overtime_amount = $3,
			performance_bonus = $4, other_bonus = $5, gross_pay = $6,
			insurance = $7, pension = $8, other_deductions = $9,
			income_tax = $10, tax_slab_label = $11, leave_deduction = $12,
			total_deductions = $13, net_pay = $14, manual_overrides = $15,
			updated_at = NOW()
		WHERE id = $16 AND status = 'draft'
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		rec.OvertimeHours, rec.OvertimeRate, rec.OvertimeAmount,
		rec.PerformanceBonus, rec.OtherBonus, rec.GrossPay,
		rec.Insurance, rec.Pension, rec.OtherDeductions,
		rec.IncomeTax, rec.TaxSlabLabel, rec.LeaveDeduction,
		rec.TotalDeductions, rec.NetPay, overrideStrings(rec), rec.ID,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update payroll record %s: %w", rec.ID, err)
	}

	return nil
}

// Finalize implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) Finalize(ctx context.Context, ids []string) error {
	q := GetQuerier(ctx, p.db)

	query := `
		UPDATE payroll_records
		SET status = 'finalized', updated_at = NOW()
		WHERE id = ANY($1) AND status = 'draft'
	`

	tag, err := q.Exec(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to finalize payroll records: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return payroll.ErrRecordNotFound
	}

	return nil
}

// MarkPaid implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) MarkPaid(ctx context.Context, ids []string) error {
	q := GetQuerier(ctx, p.db)

	query := `
		UPDATE payroll_records
		SET status = 'paid', paid_at = NOW(), updated_at = NOW()
		WHERE id = ANY($1) AND status = 'finalized'
	`

	tag, err := q.Exec(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to mark payroll records paid: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return payroll.ErrRecordNotFound
	}

	return nil
}

// Delete implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, p.db)

	query := `DELETE FROM payroll_records WHERE id = $1 AND status <> 'paid' RETURNING id`

	var deletedID string
	if err := q.QueryRow(ctx, query, id).Scan(&deletedID); err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete payroll record %s: %w", id, err)
	}

	return nil
}

// GetSummary implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) GetSummary(ctx context.Context, month, year int) (payroll.SummaryResponse, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT COUNT(*),
			COALESCE(SUM(gross_pay), 0),
			COALESCE(SUM(income_tax), 0),
			COALESCE(SUM(eobi), 0),
			COALESCE(SUM(provident_fund), 0),
			COALESCE(SUM(loan_deduction), 0),
			COALESCE(SUM(total_deductions), 0),
			COALESCE(SUM(net_pay), 0),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'finalized'),
			COUNT(*) FILTER (WHERE status = 'paid')
		FROM payroll_records
		WHERE period_month = $1 AND period_year = $2
	`

	summary := payroll.SummaryResponse{PeriodMonth: month, PeriodYear: year}
	err := q.QueryRow(ctx, query, month, year).Scan(
		&summary.TotalEmployees, &summary.TotalGrossPay, &summary.TotalTax,
		&summary.TotalEOBI, &summary.TotalPF, &summary.TotalLoan,
		&summary.TotalDeductions, &summary.TotalNetPay,
		&summary.DraftCount, &summary.FinalizedCount, &summary.PaidCount,
	)
	if err != nil {
		return payroll.SummaryResponse{}, fmt.Errorf("failed to get payroll summary for %d/%d: %w", month, year, err)
	}

	return summary, nil
}

// StalePeriods implements payroll.PayrollRepository. A draft record is stale
// when its employee's attendance or loan state changed after the record was
// last computed.
func (p *payrollRepositoryImpl) StalePeriods(ctx context.Context, limit int) ([]payroll.StalePeriod, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT p.employee_id, p.period_month, p.period_year
		FROM payroll_records p
		WHERE p.status = 'draft' AND (
			EXISTS (
				SELECT 1 FROM attendance_records a
				WHERE a.employee_id = p.employee_id
					AND EXTRACT(MONTH FROM a.date) = p.period_month
					AND EXTRACT(YEAR FROM a.date) = p.period_year
					AND a.updated_at > p.updated_at
			)
			OR EXISTS (
				SELECT 1 FROM loans l
				WHERE l.employee_id = p.employee_id AND l.updated_at > p.updated_at
			)
		)
		ORDER BY p.period_year, p.period_month
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.StalePeriod
	for rows.Next() {
		var sp payroll.StalePeriod
		if err := rows.Scan(&sp.EmployeeID, &sp.PeriodMonth, &sp.PeriodYear); err != nil {
			return nil, err
		}
		periods = append(periods, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return periods, nil
}
