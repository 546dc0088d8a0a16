package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tajhr/hrpay-backend-go/internal/domain/attendance"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	id, employee_id, date, status, check_in, check_out, break_minutes,
	work_minutes, source, is_active, created_at, updated_at
`

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Status, &rec.CheckIn,
		&rec.CheckOut, &rec.BreakMinutes, &rec.WorkMinutes, &rec.Source,
		&rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// GetByEmployeeMonth implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByEmployeeMonth(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, updated_at
	`

	rows, err := q.Query(ctx, query, employeeID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`

	rec, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record %s: %w", id, err)
	}

	return rec, nil
}

// UpsertDay implements attendance.AttendanceRepository. One canonical row
// per (employee, date); re-derivation overwrites it in place.
func (a *attendanceRepositoryImpl) UpsertDay(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			employee_id, date, status, check_in, check_out, break_minutes, work_minutes, source, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			break_minutes = EXCLUDED.break_minutes,
			work_minutes = EXCLUDED.work_minutes,
			source = EXCLUDED.source,
			is_active = TRUE,
			updated_at = NOW()
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		rec.EmployeeID, rec.Date, rec.Status, rec.CheckIn, rec.CheckOut,
		rec.BreakMinutes, rec.WorkMinutes, rec.Source,
	))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to upsert attendance day: %w", err)
	}

	return saved, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET status = $1, check_in = $2, check_out = $3, break_minutes = $4,
			work_minutes = $5, source = $6, updated_at = NOW()
		WHERE id = $7 AND is_active = TRUE
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		rec.Status, rec.CheckIn, rec.CheckOut, rec.BreakMinutes,
		rec.WorkMinutes, rec.Source, rec.ID,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update attendance record %s: %w", rec.ID, err)
	}

	return nil
}

// SoftDelete implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING id
	`

	var deletedID string
	if err := q.QueryRow(ctx, query, id).Scan(&deletedID); err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete attendance record %s: %w", id, err)
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"is_active = TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Month != 0 && filter.Year != 0 {
		conditions = append(conditions, fmt.Sprintf(
			"date >= $%d AND date < ($%d::date + INTERVAL '1 month')", argIdx, argIdx))
		args = append(args, time.Date(filter.Year, time.Month(filter.Month), 1, 0, 0, 0, 0, time.UTC))
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendance_records WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE ` + where +
		` ORDER BY date DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
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

// InsertPunch implements attendance.AttendanceRepository. The punch ID is
// the device's own event ID; replays of the same punch insert nothing.
func (a *attendanceRepositoryImpl) InsertPunch(ctx context.Context, punch attendance.PunchEvent) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_punches (id, employee_code, punched_at, device_serial)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, punch.ID, punch.EmployeeCode, punch.Timestamp, punch.DeviceSerial)
	if err != nil {
		return false, fmt.Errorf("failed to insert punch %s: %w", punch.ID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetPunches implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetPunches(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) ([]attendance.PunchEvent, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT p.id, p.employee_code, p.punched_at, p.device_serial, p.created_at
		FROM attendance_punches p
		JOIN employees e ON e.employee_code = p.employee_code
		WHERE e.id = $1 AND p.punched_at >= $2 AND p.punched_at < $3
		ORDER BY p.punched_at
	`

	rows, err := q.Query(ctx, query, employeeID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get punches for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var punches []attendance.PunchEvent
	for rows.Next() {
		var p attendance.PunchEvent
		if err := rows.Scan(&p.ID, &p.EmployeeCode, &p.Timestamp, &p.DeviceSerial, &p.ReceivedAt); err != nil {
			return nil, err
		}
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return punches, nil
}

// GetPunchEmployees implements attendance.AttendanceRepository. Returns the
// distinct employee IDs with punches in the window, for reconciliation.
func (a *attendanceRepositoryImpl) GetPunchEmployees(ctx context.Context, monthStart, monthEnd time.Time) ([]string, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT DISTINCT e.id
		FROM attendance_punches p
		JOIN employees e ON e.employee_code = p.employee_code
		WHERE p.punched_at >= $1 AND p.punched_at < $2
	`

	rows, err := q.Query(ctx, query, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get punch employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
