package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tajhr/hrpay-backend-go/internal/domain/attendance"
	"github.com/tajhr/hrpay-backend-go/internal/domain/employee"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/sse"
)

// Config carries the ingestion-time settings. DeviceUTCOffset normalizes
// device-local punch timestamps once, at the door, so no downstream repair
// of timezone drift is ever needed.
type Config struct {
	DeviceUTCOffset    time.Duration // e.g. 5h for PKT
	GraceMinutes       int           // clock-in tolerance before Late
	HalfDayMinMinutes  int           // below this worked time a day is Half Day
	DefaultBreakMinutes int
}

type AttendanceServiceImpl struct {
	db             *database.DB
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	hub            *sse.Hub
	cfg            Config

	// Shift start used for Late derivation; device feed carries no schedule.
	shiftStartHour   int
	shiftStartMinute int
}

func NewAttendanceService(
	db *database.DB,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	hub *sse.Hub,
	cfg Config,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		db:             db,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		hub:            hub,
		cfg:            cfg,
		shiftStartHour: 9,
	}
}

// RecordPunch ingests one biometric punch. The operation is idempotent:
// the device punch ID dedupes redelivery, and the day record is re-derived
// from the full punch ledger so out-of-order arrival still lands the
// earliest punch as check-in and the latest as check-out.
func (s *AttendanceServiceImpl) RecordPunch(ctx context.Context, req attendance.PunchRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	emp, err := s.employeeRepo.GetByCode(ctx, req.EmployeeCode)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.RecordResponse{}, attendance.ErrUnknownEmployee
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to resolve employee code: %w", err)
	}

	ts, _ := time.Parse(time.RFC3339, req.Timestamp)
	localTS := s.normalizeDeviceTime(ts)

	punch := attendance.PunchEvent{
		ID:           req.PunchID,
		EmployeeCode: req.EmployeeCode,
		Timestamp:    localTS,
		DeviceSerial: req.DeviceSerial,
		ReceivedAt:   time.Now().UTC(),
	}

	inserted, err := s.attendanceRepo.InsertPunch(ctx, punch)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to store punch: %w", err)
	}
	if !inserted {
		slog.Debug("duplicate punch ignored", "punch_id", req.PunchID, "employee_code", req.EmployeeCode)
	}

	rec, err := s.rebuildDay(ctx, emp.ID, localTS)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.hub.Publish(sse.TopicAttendance, sse.Event{
		Event: "punch",
		Data: map[string]interface{}{
			"employee_code": req.EmployeeCode,
			"date":          rec.Date.Format("2006-01-02"),
			"status":        string(rec.Status),
		},
	})

	return toRecordResponse(rec), nil
}

// normalizeDeviceTime shifts a device timestamp to the configured local
// offset when the device reported a zone-less or UTC time.
func (s *AttendanceServiceImpl) normalizeDeviceTime(ts time.Time) time.Time {
	_, offset := ts.Zone()
	if offset == 0 && s.cfg.DeviceUTCOffset != 0 {
		return ts.Add(s.cfg.DeviceUTCOffset)
	}
	return ts
}

// rebuildDay re-derives the canonical day record from every punch stored
// for the employee/date. Safe to call repeatedly.
func (s *AttendanceServiceImpl) rebuildDay(ctx context.Context, employeeID string, at time.Time) (attendance.Record, error) {
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	punches, err := s.attendanceRepo.GetPunches(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to load punches: %w", err)
	}
	if len(punches) == 0 {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}

	// A manual correction outranks re-derivation until a punch newer than
	// the correction arrives.
	existing, err := s.attendanceRepo.GetByEmployeeMonth(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to load day record: %w", err)
	}
	if len(existing) > 0 && existing[0].Source == "manual" && !anyPunchAfter(punches, existing[0].UpdatedAt) {
		return existing[0], nil
	}

	checkIn := punches[0].Timestamp
	checkOut := punches[0].Timestamp
	for _, p := range punches[1:] {
		if p.Timestamp.Before(checkIn) {
			checkIn = p.Timestamp
		}
		if p.Timestamp.After(checkOut) {
			checkOut = p.Timestamp
		}
	}

	breakMinutes := 0
	if len(punches) > 1 {
		breakMinutes = s.cfg.DefaultBreakMinutes
	}

	workMinutes := int(checkOut.Sub(checkIn).Minutes()) - breakMinutes
	if workMinutes < 0 {
		workMinutes = 0
	}

	rec := attendance.Record{
		EmployeeID:   employeeID,
		Date:         dayStart,
		Status:       s.deriveStatus(checkIn, checkOut, workMinutes),
		CheckIn:      &checkIn,
		BreakMinutes: breakMinutes,
		WorkMinutes:  workMinutes,
		Source:       "device",
		IsActive:     true,
	}
	if len(punches) > 1 {
		rec.CheckOut = &checkOut
	}

	saved, err := s.attendanceRepo.UpsertDay(ctx, rec)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to upsert day record: %w", err)
	}
	return saved, nil
}

func anyPunchAfter(punches []attendance.PunchEvent, t time.Time) bool {
	for _, p := range punches {
		if p.ReceivedAt.After(t) {
			return true
		}
	}
	return false
}

func (s *AttendanceServiceImpl) deriveStatus(checkIn, checkOut time.Time, workMinutes int) attendance.Status {
	if s.cfg.HalfDayMinMinutes > 0 && !checkOut.Equal(checkIn) && workMinutes < s.cfg.HalfDayMinMinutes {
		return attendance.StatusHalfDay
	}

	shiftStart := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(),
		s.shiftStartHour, s.shiftStartMinute, 0, 0, checkIn.Location())
	graceLimit := shiftStart.Add(time.Duration(s.cfg.GraceMinutes) * time.Minute)

	if checkIn.After(graceLimit) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

// MonthlySummary aggregates an employee's month for payroll.
func (s *AttendanceServiceImpl) MonthlySummary(ctx context.Context, employeeID string, month time.Month, year int) (attendance.Summary, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	records, err := s.attendanceRepo.GetByEmployeeMonth(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("failed to load attendance records: %w", err)
	}

	return Aggregate(records, month, year)
}

// Correct applies a manual HR fix to one day record. Corrected records win
// over device-derived state until the punch ledger changes again.
func (s *AttendanceServiceImpl) Correct(ctx context.Context, req attendance.CorrectionRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.attendanceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if req.Status != nil {
		rec.Status = attendance.Status(*req.Status)
	}
	if req.CheckIn != nil {
		t, _ := time.Parse(time.RFC3339, *req.CheckIn)
		rec.CheckIn = &t
	}
	if req.CheckOut != nil {
		t, _ := time.Parse(time.RFC3339, *req.CheckOut)
		rec.CheckOut = &t
	}
	if req.BreakMinutes != nil {
		rec.BreakMinutes = *req.BreakMinutes
	}

	if rec.CheckIn != nil && rec.CheckOut != nil {
		if rec.CheckOut.Before(*rec.CheckIn) {
			return attendance.RecordResponse{}, attendance.ErrCheckOutBeforeIn
		}
		workMinutes := int(rec.CheckOut.Sub(*rec.CheckIn).Minutes()) - rec.BreakMinutes
		if workMinutes < 0 {
			workMinutes = 0
		}
		rec.WorkMinutes = workMinutes
	}
	rec.Source = "manual"

	if err := s.attendanceRepo.Update(ctx, rec); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return toRecordResponse(rec), nil
}

// ReconcileMonth re-derives every canonical day record of the month from
// the punch ledger. Replaces the old fleet of one-off repair scripts: the
// operation is idempotent and safe to re-run at any time.
func (s *AttendanceServiceImpl) ReconcileMonth(ctx context.Context, employeeID string, month time.Month, year int) (int, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	rebuilt := 0
	for day := monthStart; day.Before(monthEnd); day = day.AddDate(0, 0, 1) {
		_, err := s.rebuildDay(ctx, employeeID, day)
		if err != nil {
			if errors.Is(err, attendance.ErrRecordNotFound) {
				continue // no punches that day
			}
			return rebuilt, err
		}
		rebuilt++
	}

	slog.Info("attendance month reconciled",
		"employee_id", employeeID, "month", int(month), "year", year, "days_rebuilt", rebuilt)
	return rebuilt, nil
}

// ReconcileAll runs ReconcileMonth for every employee with punches in the
// period. Used by the nightly cron job.
func (s *AttendanceServiceImpl) ReconcileAll(ctx context.Context, month time.Month, year int) error {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	ids, err := s.attendanceRepo.GetPunchEmployees(ctx, monthStart, monthEnd)
	if err != nil {
		return fmt.Errorf("failed to list punch employees: %w", err)
	}

	for _, id := range ids {
		if _, err := s.ReconcileMonth(ctx, id, month, year); err != nil {
			slog.Error("reconcile failed for employee", "employee_id", id, "error", err)
		}
	}
	return nil
}

func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.RecordResponse, int64, error) {
	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	return out, total, nil
}

func (s *AttendanceServiceImpl) Delete(ctx context.Context, id string) error {
	return s.attendanceRepo.SoftDelete(ctx, id)
}

func toRecordResponse(rec attendance.Record) attendance.RecordResponse {
	return attendance.RecordResponse{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		Date:         rec.Date.Format("2006-01-02"),
		Status:       string(rec.Status),
		CheckIn:      timePtrToString(rec.CheckIn),
		CheckOut:     timePtrToString(rec.CheckOut),
		BreakMinutes: rec.BreakMinutes,
		WorkMinutes:  rec.WorkMinutes,
		Source:       rec.Source,
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}
