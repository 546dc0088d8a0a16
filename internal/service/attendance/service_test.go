package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tajhr/hrpay-backend-go/internal/domain/attendance"
	"github.com/tajhr/hrpay-backend-go/internal/domain/employee"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/sse"
)

type memAttendanceRepo struct {
	punches map[string]attendance.PunchEvent
	days    map[string]attendance.Record // keyed employeeID + date
	seq     int
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{
		punches: make(map[string]attendance.PunchEvent),
		days:    make(map[string]attendance.Record),
	}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (r *memAttendanceRepo) GetByEmployeeMonth(_ context.Context, employeeID string, monthStart, monthEnd time.Time) ([]attendance.Record, error) {
	// The date column compares by calendar day, not instant.
	var out []attendance.Record
	for _, rec := range r.days {
		day := rec.Date.Format("2006-01-02")
		if rec.EmployeeID == employeeID && day >= monthStart.Format("2006-01-02") && day < monthEnd.Format("2006-01-02") {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	for _, rec := range r.days {
		if rec.ID == id {
			return rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (r *memAttendanceRepo) UpsertDay(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	key := dayKey(rec.EmployeeID, rec.Date)
	if existing, ok := r.days[key]; ok {
		rec.ID = existing.ID
	} else {
		r.seq++
		rec.ID = fmt.Sprintf("att-%d", r.seq)
	}
	rec.UpdatedAt = time.Now().UTC()
	r.days[key] = rec
	return rec, nil
}

func (r *memAttendanceRepo) Update(_ context.Context, rec attendance.Record) error {
	rec.UpdatedAt = time.Now().UTC()
	r.days[dayKey(rec.EmployeeID, rec.Date)] = rec
	return nil
}

func (r *memAttendanceRepo) SoftDelete(_ context.Context, id string) error {
	for key, rec := range r.days {
		if rec.ID == id {
			delete(r.days, key)
			return nil
		}
	}
	return attendance.ErrRecordNotFound
}

func (r *memAttendanceRepo) List(_ context.Context, _ attendance.ListFilter) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, rec := range r.days {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *memAttendanceRepo) InsertPunch(_ context.Context, punch attendance.PunchEvent) (bool, error) {
	if _, ok := r.punches[punch.ID]; ok {
		return false, nil
	}
	r.punches[punch.ID] = punch
	return true, nil
}

func (r *memAttendanceRepo) GetPunches(_ context.Context, employeeID string, dayStart, dayEnd time.Time) ([]attendance.PunchEvent, error) {
	var out []attendance.PunchEvent
	for _, p := range r.punches {
		if !p.Timestamp.Before(dayStart) && p.Timestamp.Before(dayEnd) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memAttendanceRepo) GetPunchEmployees(_ context.Context, _, _ time.Time) ([]string, error) {
	return []string{"emp-1"}, nil
}

type codeEmployeeRepo struct {
	byCode map[string]employee.Employee
}

func (r *codeEmployeeRepo) Create(_ context.Context, emp employee.Employee) (employee.Employee, error) {
	return emp, nil
}

func (r *codeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, emp := range r.byCode {
		if emp.ID == id {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *codeEmployeeRepo) GetByCode(_ context.Context, code string) (employee.Employee, error) {
	emp, ok := r.byCode[code]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *codeEmployeeRepo) List(_ context.Context, _ employee.ListEmployeeFilter) ([]employee.Employee, int64, error) {
	return nil, 0, nil
}

func (r *codeEmployeeRepo) GetActive(_ context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (r *codeEmployeeRepo) Update(_ context.Context, _ employee.UpdateEmployeeRequest) error {
	return nil
}

func (r *codeEmployeeRepo) SoftDelete(_ context.Context, _ string) error {
	return nil
}

func testService(repo *memAttendanceRepo) *AttendanceServiceImpl {
	emps := &codeEmployeeRepo{byCode: map[string]employee.Employee{
		"1001": {ID: "emp-1", EmployeeCode: "1001", BasicSalary: decimal.NewFromInt(50_000), IsActive: true},
	}}
	return NewAttendanceService(nil, repo, emps, sse.NewHub(), Config{
		DeviceUTCOffset:     5 * time.Hour,
		GraceMinutes:        15,
		HalfDayMinMinutes:   240,
		DefaultBreakMinutes: 60,
	})
}

func punch(id, code, ts string) attendance.PunchRequest {
	return attendance.PunchRequest{
		EmployeeCode: code,
		Timestamp:    ts,
		DeviceSerial: "DEV-01",
		PunchID:      id,
	}
}

func TestRecordPunch_SinglePunch(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)

	rec, err := svc.RecordPunch(context.Background(), punch("p1", "1001", "2025-03-10T08:55:00+05:00"))
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", rec.Date)
	assert.Equal(t, string(attendance.StatusPresent), rec.Status)
	require.NotNil(t, rec.CheckIn)
	assert.Nil(t, rec.CheckOut, "single punch must not fabricate a check-out")
	assert.Equal(t, 0, rec.WorkMinutes)
}

func TestRecordPunch_PairDerivesWorkMinutes(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)
	ctx := context.Background()

	_, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T09:00:00+05:00"))
	require.NoError(t, err)
	rec, err := svc.RecordPunch(ctx, punch("p2", "1001", "2025-03-10T18:00:00+05:00"))
	require.NoError(t, err)

	// 9h span minus the default 60 minute break.
	assert.Equal(t, 480, rec.WorkMinutes)
	assert.Equal(t, 60, rec.BreakMinutes)
	require.NotNil(t, rec.CheckOut)
}

func TestRecordPunch_DuplicateDeliveryIsIdempotent(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)
	ctx := context.Background()

	first, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T09:00:00+05:00"))
	require.NoError(t, err)
	second, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T09:00:00+05:00"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, repo.punches, 1)
	assert.Len(t, repo.days, 1)
}

func TestRecordPunch_OutOfOrderArrival(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)
	ctx := context.Background()

	// Evening punch delivered first; the morning one arrives late but must
	// still land as check-in.
	_, err := svc.RecordPunch(ctx, punch("p2", "1001", "2025-03-10T17:30:00+05:00"))
	require.NoError(t, err)
	rec, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T08:50:00+05:00"))
	require.NoError(t, err)

	require.NotNil(t, rec.CheckIn)
	require.NotNil(t, rec.CheckOut)
	assert.Contains(t, *rec.CheckIn, "08:50")
	assert.Contains(t, *rec.CheckOut, "17:30")
	assert.Equal(t, string(attendance.StatusPresent), rec.Status)
}

func TestRecordPunch_NormalizesZonelessDeviceTime(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)

	// The device reports 04:00 UTC, which is 09:00 local at +05:00. Without
	// normalization this would count as an extreme early arrival.
	rec, err := svc.RecordPunch(context.Background(), punch("p1", "1001", "2025-03-10T04:00:00Z"))
	require.NoError(t, err)

	require.NotNil(t, rec.CheckIn)
	assert.Contains(t, *rec.CheckIn, "09:00")
	assert.Equal(t, string(attendance.StatusPresent), rec.Status)
}

func TestRecordPunch_LateAfterGrace(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)

	rec, err := svc.RecordPunch(context.Background(), punch("p1", "1001", "2025-03-10T09:20:00+05:00"))
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusLate), rec.Status)
}

func TestRecordPunch_ShortDayIsHalfDay(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)
	ctx := context.Background()

	_, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T09:00:00+05:00"))
	require.NoError(t, err)
	rec, err := svc.RecordPunch(ctx, punch("p2", "1001", "2025-03-10T12:00:00+05:00"))
	require.NoError(t, err)

	// 3h minus break leaves 120 worked minutes, under the 240 threshold.
	assert.Equal(t, string(attendance.StatusHalfDay), rec.Status)
}

func TestRecordPunch_UnknownEmployeeCode(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)

	_, err := svc.RecordPunch(context.Background(), punch("p1", "9999", "2025-03-10T09:00:00+05:00"))
	assert.ErrorIs(t, err, attendance.ErrUnknownEmployee)
}

func TestCorrect_RespectsCheckOrder(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)
	ctx := context.Background()

	rec, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T09:00:00+05:00"))
	require.NoError(t, err)

	badOut := "2025-03-10T07:00:00+05:00"
	_, err = svc.Correct(ctx, attendance.CorrectionRequest{ID: rec.ID, CheckOut: &badOut})
	assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeIn)
}

func TestCorrect_RecomputesWorkMinutes(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)
	ctx := context.Background()

	_, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T09:00:00+05:00"))
	require.NoError(t, err)
	rec, err := svc.RecordPunch(ctx, punch("p2", "1001", "2025-03-10T13:00:00+05:00"))
	require.NoError(t, err)

	// HR fixes the missed evening check-out.
	checkOut := "2025-03-10T18:00:00+05:00"
	fixed, err := svc.Correct(ctx, attendance.CorrectionRequest{ID: rec.ID, CheckOut: &checkOut})
	require.NoError(t, err)

	assert.Equal(t, 480, fixed.WorkMinutes)
	assert.Equal(t, "manual", fixed.Source)
}

func TestReconcileMonth_RebuildsFromLedger(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)
	ctx := context.Background()

	_, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T09:00:00+05:00"))
	require.NoError(t, err)
	_, err = svc.RecordPunch(ctx, punch("p2", "1001", "2025-03-10T18:00:00+05:00"))
	require.NoError(t, err)
	_, err = svc.RecordPunch(ctx, punch("p3", "1001", "2025-03-12T09:05:00+05:00"))
	require.NoError(t, err)

	// Corrupt a day record; reconciliation must restore it from punches.
	for key, rec := range repo.days {
		rec.WorkMinutes = 9999
		rec.Status = attendance.StatusAbsent
		repo.days[key] = rec
	}

	rebuilt, err := svc.ReconcileMonth(ctx, "emp-1", time.March, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, rebuilt)

	rec := repo.days[dayKey("emp-1", time.Date(2025, 3, 10, 0, 0, 0, 0, time.FixedZone("", 5*3600)))]
	assert.Equal(t, 480, rec.WorkMinutes)
	assert.Equal(t, attendance.StatusPresent, rec.Status)

	// Running it again changes nothing.
	again, err := svc.ReconcileMonth(ctx, "emp-1", time.March, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, again)
}

func TestReconcileMonth_PreservesManualCorrection(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := testService(repo)
	ctx := context.Background()

	_, err := svc.RecordPunch(ctx, punch("p1", "1001", "2025-03-10T09:00:00+05:00"))
	require.NoError(t, err)
	rec, err := svc.RecordPunch(ctx, punch("p2", "1001", "2025-03-10T13:00:00+05:00"))
	require.NoError(t, err)

	// HR fixes the missed evening check-out; the ledger itself is unchanged.
	checkOut := "2025-03-10T18:00:00+05:00"
	fixed, err := svc.Correct(ctx, attendance.CorrectionRequest{ID: rec.ID, CheckOut: &checkOut})
	require.NoError(t, err)
	require.Equal(t, 480, fixed.WorkMinutes)

	// Reconciliation must not revert the correction to the two-punch state.
	_, err = svc.ReconcileMonth(ctx, "emp-1", time.March, 2025)
	require.NoError(t, err)

	key := dayKey("emp-1", time.Date(2025, 3, 10, 0, 0, 0, 0, time.FixedZone("", 5*3600)))
	kept := repo.days[key]
	assert.Equal(t, "manual", kept.Source)
	assert.Equal(t, 480, kept.WorkMinutes)

	// A punch newer than the correction puts the device back in charge.
	_, err = svc.RecordPunch(ctx, punch("p3", "1001", "2025-03-10T19:00:00+05:00"))
	require.NoError(t, err)

	rebuilt := repo.days[key]
	assert.Equal(t, "device", rebuilt.Source)
	assert.Equal(t, 540, rebuilt.WorkMinutes)
}
