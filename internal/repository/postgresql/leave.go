package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tajhr/hrpay-backend-go/internal/domain/leave"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

// GetApprovedInRange implements leave.LeaveRepository. Returns approved
// requests overlapping [from, to), with the paid flag joined in.
func (l *leaveRepositoryImpl) GetApprovedInRange(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Request, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT r.id, r.employee_id, r.leave_type_id, r.start_date, r.end_date,
			r.status, r.reason, r.created_at, r.updated_at, t.is_paid
		FROM leave_requests r
		JOIN leave_types t ON t.id = r.leave_type_id
		WHERE r.employee_id = $1 AND r.status = $2
			AND r.start_date < $4 AND r.end_date >= $3
		ORDER BY r.start_date
	`

	rows, err := q.Query(ctx, query, employeeID, leave.RequestApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved leave for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		var req leave.Request
		err := rows.Scan(
			&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate,
			&req.Status, &req.Reason, &req.CreatedAt, &req.UpdatedAt, &req.IsPaid,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// GetLeaveType implements leave.LeaveRepository.
func (l *leaveRepositoryImpl) GetLeaveType(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)

	query := `SELECT id, name, is_paid, created_at, updated_at FROM leave_types WHERE id = $1`

	var lt leave.LeaveType
	err := q.QueryRow(ctx, query, id).Scan(&lt.ID, &lt.Name, &lt.IsPaid, &lt.CreatedAt, &lt.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type %s: %w", id, err)
	}

	return lt, nil
}

// ListLeaveTypes implements leave.LeaveRepository.
func (l *leaveRepositoryImpl) ListLeaveTypes(ctx context.Context) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)

	query := `SELECT id, name, is_paid, created_at, updated_at FROM leave_types ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		var lt leave.LeaveType
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.IsPaid, &lt.CreatedAt, &lt.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, lt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}
