package core

import (
	"errors"
	"strings"
	"time"
)

// Expense is one billing-period record for the rental house, optionally
// split across the occupants listed in Users.
type Expense struct {
	ID   string `json:"id"`
	Date string `json:"date"` // calendar date, YYYY-MM-DD

	House       float64 `json:"house"`
	Electricity float64 `json:"electricity"`

	// Sub-meter readings, absent when not recorded for the period.
	TotalElect *float64 `json:"totalElect"`
	RtAcFridge *float64 `json:"rtAcFridge"`
	PheaFridge *float64 `json:"pheaFridge"`
	Mining     *float64 `json:"mining"`

	Water      *float64 `json:"water"`
	Waste      *float64 `json:"waste"`
	Additional *float64 `json:"additional"`

	Users []ExpenseUser `json:"users"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExpenseUser is one occupant's allocation within an Expense. It is owned
// by its parent Expense and never persisted on its own.
type ExpenseUser struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Amount           float64 `json:"amount"`           // rent share
	ElectricityShare float64 `json:"electricityShare"` // fraction of the parent's Electricity
	Room             string  `json:"room"`

	AdditionalExpenseType string   `json:"additionalExpenseType"`
	AdditionalAmount      *float64 `json:"additionalAmount"`
}

// AdditionalExpenseType is a named category usable in
// ExpenseUser.AdditionalExpenseType. Uniqueness of Name is by convention
// only; deleting a type does not touch expenses referencing it.
type AdditionalExpenseType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Preferences holds per-account display settings.
type Preferences struct {
	Theme    string `json:"theme"`
	Currency string `json:"currency"`
	Language string `json:"language"`
}

// UserProfile is the authenticated account metadata, keyed by the identity
// provider's uid.
type UserProfile struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	PhotoURL    string      `json:"photoURL"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	LastLoginAt time.Time   `json:"lastLoginAt"`
}

// DefaultPreferences returns the preferences assigned on first sign-in.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "light", Currency: "USD", Language: "en"}
}

var (
	ErrEmptyDate       = errors.New("date is required")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrEmptyName       = errors.New("name is required")
	ErrNoUsers         = errors.New("expense has no users")
	ErrMissingID       = errors.New("missing document id")
	ErrProfileNotFound = errors.New("profile not found")
)

// Validate checks an expense before it is written to the store.
//
// ElectricityShare fractions across Users are deliberately not required to
// sum to 1; only individual shares are checked for sign.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Date) == "" {
		return ErrEmptyDate
	}
	if e.House < 0 || e.Electricity < 0 {
		return ErrNegativeAmount
	}
	for _, p := range []*float64{e.TotalElect, e.RtAcFridge, e.PheaFridge, e.Mining, e.Water, e.Waste, e.Additional} {
		if p != nil && *p < 0 {
			return ErrNegativeAmount
		}
	}
	for _, u := range e.Users {
		if err := u.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (u ExpenseUser) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if u.Amount < 0 || u.ElectricityShare < 0 {
		return ErrNegativeAmount
	}
	if u.AdditionalAmount != nil && *u.AdditionalAmount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (t AdditionalExpenseType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ElectricityAmount is the slice of the parent expense's electricity bill
// attributed to this user.
func (u ExpenseUser) ElectricityAmount(electricity float64) float64 {
	return electricity * u.ElectricityShare
}

// Total is the user's full share: rent plus electricity slice plus any
// additional charge.
func (u ExpenseUser) Total(electricity float64) float64 {
	total := u.Amount + u.ElectricityAmount(electricity)
	if u.AdditionalAmount != nil {
		total += *u.AdditionalAmount
	}
	return total
}

// DefaultExpenseTypes are seeded once when the type collection is empty.
func DefaultExpenseTypes() []AdditionalExpenseType {
	return []AdditionalExpenseType{
		{Name: "Mining", Description: "Mining equipment expenses"},
		{Name: "Air Conditioning", Description: "AC usage and maintenance"},
		{Name: "Fridge", Description: "Refrigerator usage and maintenance"},
		{Name: "Cloth Wash", Description: "Laundry and washing machine usage"},
	}
}

// Float returns a pointer to v. Convenient for the optional numeric fields.
func Float(v float64) *float64 { return &v }
