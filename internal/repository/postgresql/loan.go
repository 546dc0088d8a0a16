package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tajhr/hrpay-backend-go/internal/domain/loan"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
)

type loanRepositoryImpl struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepositoryImpl{db: db}
}

const loanColumns = `
	id, employee_id, loan_type, principal, interest_rate, term_months,
	monthly_installment, total_payable, total_paid, outstanding_balance,
	status, deduction_enabled, deduction_type, deduction_fixed_amount,
	deduction_percentage, application_date, disbursement_date,
	completion_date, created_at, updated_at
`

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(columns, prefix string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scanLoan(row pgx.Row) (loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.LoanType, &l.Principal, &l.InterestRate,
		&l.TermMonths, &l.MonthlyInstallment, &l.TotalPayable, &l.TotalPaid,
		&l.OutstandingBalance, &l.Status, &l.SalaryDeduction.Enabled,
		&l.SalaryDeduction.DeductionType, &l.SalaryDeduction.FixedAmount,
		&l.SalaryDeduction.Percentage, &l.ApplicationDate, &l.DisbursementDate,
		&l.CompletionDate, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Create implements loan.LoanRepository. The loan row and its full
// amortization schedule are written in one transaction.
func (r *loanRepositoryImpl) Create(ctx context.Context, l loan.Loan) (loan.Loan, error) {
	var created loan.Loan

	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		q := GetQuerier(txCtx, r.db)

		query := `
			INSERT INTO loans (
				id, employee_id, loan_type, principal, interest_rate, term_months,
				monthly_installment, total_payable, total_paid, outstanding_balance,
				status, deduction_enabled, deduction_type, deduction_fixed_amount,
				deduction_percentage, application_date
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING ` + loanColumns

		var err error
		created, err = scanLoan(q.QueryRow(txCtx, query,
			l.ID, l.EmployeeID, l.LoanType, l.Principal, l.InterestRate, l.TermMonths,
			l.MonthlyInstallment, l.TotalPayable, l.TotalPaid, l.OutstandingBalance,
			l.Status, l.SalaryDeduction.Enabled, l.SalaryDeduction.DeductionType,
			l.SalaryDeduction.FixedAmount, l.SalaryDeduction.Percentage, l.ApplicationDate,
		))
		if err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}

		for _, inst := range l.Schedule {
			_, err := q.Exec(txCtx, `
				INSERT INTO loan_installments (
					id, loan_id, number, due_date, amount, principal, interest, balance, paid_amount, status
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, uuid.New().String(), created.ID, inst.Number, inst.DueDate, inst.Amount, inst.Principal,
				inst.Interest, inst.Balance, inst.PaidAmount, inst.Status)
			if err != nil {
				return fmt.Errorf("failed to create installment %d: %w", inst.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		return loan.Loan{}, err
	}

	schedule, err := r.GetSchedule(ctx, created.ID)
	if err != nil {
		return loan.Loan{}, err
	}
	created.Schedule = schedule

	return created, nil
}

// GetByID implements loan.LoanRepository.
func (r *loanRepositoryImpl) GetByID(ctx context.Context, id string) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	l, err := scanLoan(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.Loan{}, loan.ErrLoanNotFound
		}
		return loan.Loan{}, fmt.Errorf("failed to get loan %s: %w", id, err)
	}

	l.Schedule, err = r.GetSchedule(ctx, id)
	if err != nil {
		return loan.Loan{}, err
	}

	return l, nil
}

// GetActiveByEmployee implements loan.LoanRepository.
func (r *loanRepositoryImpl) GetActiveByEmployee(ctx context.Context, employeeID string) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE employee_id = $1 AND status IN ($2, $3) AND outstanding_balance > 0
		ORDER BY disbursement_date NULLS LAST, created_at
		LIMIT 1
	`

	l, err := scanLoan(q.QueryRow(ctx, query, employeeID, loan.StatusActive, loan.StatusDisbursed))
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.Loan{}, loan.ErrNoActiveLoan
		}
		return loan.Loan{}, fmt.Errorf("failed to get active loan for employee %s: %w", employeeID, err)
	}

	l.Schedule, err = r.GetSchedule(ctx, l.ID)
	if err != nil {
		return loan.Loan{}, err
	}

	return l, nil
}

// ListByEmployee implements loan.LoanRepository.
func (r *loanRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanColumns + ` FROM loans WHERE employee_id = $1 ORDER BY application_date DESC`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return loans, nil
}

// UpdateStatus implements loan.LoanRepository. The WHERE clause carries the
// expected current status, so a concurrent transition loses cleanly.
func (r *loanRepositoryImpl) UpdateStatus(ctx context.Context, id string, from, to loan.Status, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET status = $1,
			disbursement_date = CASE WHEN $1 = 'Disbursed' THEN $2 ELSE disbursement_date END,
			completion_date = CASE WHEN $1 = 'Completed' THEN $2 ELSE completion_date END,
			updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING id
	`

	var updatedID string
	if err := q.QueryRow(ctx, query, to, at, id, from).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return loan.ErrInvalidTransition
		}
		return fmt.Errorf("failed to update loan %s status: %w", id, err)
	}

	return nil
}

// SavePayment implements loan.LoanRepository. Loan balance and the touched
// schedule rows are persisted atomically.
func (r *loanRepositoryImpl) SavePayment(ctx context.Context, l loan.Loan, touched []loan.Installment) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		q := GetQuerier(txCtx, r.db)

		query := `
			UPDATE loans
			SET total_paid = $1, outstanding_balance = $2, status = $3,
				completion_date = $4, updated_at = NOW()
			WHERE id = $5
			RETURNING id
		`

		var updatedID string
		err := q.QueryRow(txCtx, query,
			l.TotalPaid, l.OutstandingBalance, l.Status, l.CompletionDate, l.ID,
		).Scan(&updatedID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return loan.ErrLoanNotFound
			}
			return fmt.Errorf("failed to save loan %s payment: %w", l.ID, err)
		}

		for _, inst := range touched {
			_, err := q.Exec(txCtx, `
				UPDATE loan_installments
				SET paid_amount = $1, status = $2, payment_date = $3, payment_method = $4
				WHERE loan_id = $5 AND number = $6
			`, inst.PaidAmount, inst.Status, inst.PaymentDate, inst.PaymentMethod, l.ID, inst.Number)
			if err != nil {
				return fmt.Errorf("failed to save installment %d: %w", inst.Number, err)
			}
		}
		return nil
	})
}

// GetSchedule implements loan.LoanRepository.
func (r *loanRepositoryImpl) GetSchedule(ctx context.Context, loanID string) ([]loan.Installment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, loan_id, number, due_date, amount, principal, interest,
			balance, paid_amount, status, payment_date, payment_method
		FROM loan_installments
		WHERE loan_id = $1
		ORDER BY number
	`

	rows, err := q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	var schedule []loan.Installment
	for rows.Next() {
		var inst loan.Installment
		err := rows.Scan(
			&inst.ID, &inst.LoanID, &inst.Number, &inst.DueDate, &inst.Amount,
			&inst.Principal, &inst.Interest, &inst.Balance, &inst.PaidAmount,
			&inst.Status, &inst.PaymentDate, &inst.PaymentMethod,
		)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedule, nil
}

// GetOverdueCandidates implements loan.LoanRepository.
func (r *loanRepositoryImpl) GetOverdueCandidates(ctx context.Context, cutoff time.Time) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ` + prefixColumns(loanColumns, "l.") + `
		FROM loans l
		JOIN loan_installments i ON i.loan_id = l.id
		WHERE l.status IN ($1, $2)
			AND i.status = $3
			AND i.due_date < $4
	`

	rows, err := q.Query(ctx, query, loan.StatusActive, loan.StatusDisbursed, loan.InstallmentPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue candidates: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return loans, nil
}

// MarkInstallmentsOverdue implements loan.LoanRepository.
func (r *loanRepositoryImpl) MarkInstallmentsOverdue(ctx context.Context, loanID string, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loan_installments
		SET status = $1
		WHERE loan_id = $2 AND status = $3 AND due_date < $4
	`

	tag, err := q.Exec(ctx, query, loan.InstallmentOverdue, loanID, loan.InstallmentPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue installments for loan %s: %w", loanID, err)
	}

	return tag.RowsAffected(), nil
}
