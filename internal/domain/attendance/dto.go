package attendance

import (
	"github.com/tajhr/hrpay-backend-go/internal/pkg/validator"
)

// PunchRequest is the device webhook payload for a single punch.
type PunchRequest struct {
	EmployeeCode string `json:"employee_code"`
	Timestamp    string `json:"timestamp"` // device local time, ISO8601
	DeviceSerial string `json:"device_serial"`
	PunchID      string `json:"punch_id"` // device-assigned, used for idempotency
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{Field: "employee_code", Message: "must be a 4-6 digit enrollment number"})
	}
	if _, ok := validator.IsValidDateTime(r.Timestamp); !ok {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "must be an ISO8601 timestamp"})
	}
	if validator.IsEmpty(r.PunchID) {
		errs = append(errs, validator.ValidationError{Field: "punch_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CorrectionRequest is a manual fix applied by HR to one day record.
type CorrectionRequest struct {
	ID           string
	Status       *string `json:"status,omitempty"`
	CheckIn      *string `json:"check_in,omitempty"`
	CheckOut     *string `json:"check_out,omitempty"`
	BreakMinutes *int    `json:"break_minutes,omitempty"`
}

func (r *CorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != nil && Classify(Status(*r.Status)) == BucketExcluded &&
		Status(*r.Status) != StatusHoliday && Status(*r.Status) != StatusWeekend {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "unknown status"})
	}
	if r.CheckIn != nil {
		if _, ok := validator.IsValidDateTime(*r.CheckIn); !ok {
			errs = append(errs, validator.ValidationError{Field: "check_in", Message: "must be an ISO8601 timestamp"})
		}
	}
	if r.CheckOut != nil {
		if _, ok := validator.IsValidDateTime(*r.CheckOut); !ok {
			errs = append(errs, validator.ValidationError{Field: "check_out", Message: "must be an ISO8601 timestamp"})
		}
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_minutes", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	CheckIn      *string `json:"check_in,omitempty"`
	CheckOut     *string `json:"check_out,omitempty"`
	BreakMinutes int     `json:"break_minutes"`
	WorkMinutes  int     `json:"work_minutes"`
	Source       string  `json:"source"`
}

type ListFilter struct {
	EmployeeID *string
	Month      int
	Year       int
	Page       int
	Limit      int
}
