package domain

import "github.com/shopspring/decimal"

type Staff struct {
	ID           string `json:"id"`
	BranchID     string `json:"branch_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

type Branch struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	AlertEmail string      `json:"alert_email"`
	Tax        TaxSettings `json:"tax"`
}

// TaxSettings is the account tax configuration applied at order creation.
// When RatePercent is zero the fixed amount is charged instead.
type TaxSettings struct {
	Enabled          bool            `json:"enabled"`
	RatePercent      decimal.Decimal `json:"rate_percent"`
	FixedAmountCents int64           `json:"fixed_amount_cents"`
	Inclusive        bool            `json:"inclusive"`
}

// StaffContext is what the session exposes about the signed-in staff member.
type StaffContext struct {
	StaffID      string      `json:"staff_id"`
	BranchID     string      `json:"branch_id"`
	Name         string      `json:"name"`
	IsSuperAdmin bool        `json:"is_super_admin"`
	Tax          TaxSettings `json:"tax"`
}

// ScopeBranch returns the branch a listing must be restricted to. Super
// admins see every branch unless they ask for one explicitly.
func (s *StaffContext) ScopeBranch(requested *string) *string {
	if s.IsSuperAdmin {
		if requested != nil && *requested != "" {
			return requested
		}
		return nil
	}
	branch := s.BranchID
	return &branch
}
