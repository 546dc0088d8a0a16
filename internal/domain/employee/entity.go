package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allowance is a single salary allowance slot. Inactive slots carry an
// amount but do not contribute to gross pay or taxable income.
type Allowance struct {
	IsActive bool            `json:"is_active"`
	Amount   decimal.Decimal `json:"amount"`
}

// Allowances is the fixed allowance set carried on the employee master
// record. Medical is the only tax-exempt slot.
type Allowances struct {
	HouseRent  Allowance `json:"house_rent"`
	Medical    Allowance `json:"medical"`
	Conveyance Allowance `json:"conveyance"`
	Food       Allowance `json:"food"`
	Special    Allowance `json:"special"`
	Other      Allowance `json:"other"`
}

type Employee struct {
	ID           string
	EmployeeCode string
	CNIC         string
	FirstName    string
	LastName     string
	Email        string
	Department   string
	Designation  string
	HireDate     time.Time

	// Compensation baseline
	GrossSalary decimal.Decimal
	BasicSalary decimal.Decimal
	Allowances  Allowances

	// Statutory participation. EOBI has no flag: the flat contribution
	// applies to every employee.
	ProvidentFundMember bool

	IsActive      bool
	TerminatedAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ActiveAllowanceTotal sums every active allowance slot.
func (e Employee) ActiveAllowanceTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range e.allowanceSlots() {
		if a.IsActive {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// TaxableAllowanceTotal sums active allowances excluding medical, which is
// tax-exempt under FBR salaried rules.
func (e Employee) TaxableAllowanceTotal() decimal.Decimal {
	total := decimal.Zero
	if e.Allowances.HouseRent.IsActive {
		total = total.Add(e.Allowances.HouseRent.Amount)
	}
	if e.Allowances.Conveyance.IsActive {
		total = total.Add(e.Allowances.Conveyance.Amount)
	}
	if e.Allowances.Food.IsActive {
		total = total.Add(e.Allowances.Food.Amount)
	}
	if e.Allowances.Special.IsActive {
		total = total.Add(e.Allowances.Special.Amount)
	}
	if e.Allowances.Other.IsActive {
		total = total.Add(e.Allowances.Other.Amount)
	}
	return total
}

func (e Employee) allowanceSlots() []Allowance {
	return []Allowance{
		e.Allowances.HouseRent,
		e.Allowances.Medical,
		e.Allowances.Conveyance,
		e.Allowances.Food,
		e.Allowances.Special,
		e.Allowances.Other,
	}
}
