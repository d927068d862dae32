package store

import (
	"time"

	"rentledger/internal/core"
)

// ExpenseRecord is the store-native shape of an expense: every numeric
// field is a decimal string, absent values are "". Identity and timestamp
// fields are carried outside the record and assigned by the store.
type ExpenseRecord struct {
	Date        string           `firestore:"date" json:"date"`
	House       string           `firestore:"house" json:"house"`
	TotalElect  string           `firestore:"totalElect" json:"totalElect"`
	RtAcFridge  string           `firestore:"rtAcFridge" json:"rtAcFridge"`
	PheaFridge  string           `firestore:"pheaFridge" json:"pheaFridge"`
	Mining      string           `firestore:"mining" json:"mining"`
	Electricity string           `firestore:"electricity" json:"electricity"`
	Water       string           `firestore:"water" json:"water"`
	Waste       string           `firestore:"waste" json:"waste"`
	Additional  string           `firestore:"additional" json:"additional"`
	Users       []UserAllocation `firestore:"users" json:"users"`
}

// UserAllocation is the store-native shape of one occupant's allocation.
type UserAllocation struct {
	ID                    string `firestore:"id" json:"id"`
	Name                  string `firestore:"name" json:"name"`
	Email                 string `firestore:"email" json:"email"`
	Amount                string `firestore:"amount" json:"amount"`
	ElectricityShare      string `firestore:"electricityShare" json:"electricityShare"`
	Room                  string `firestore:"room" json:"room"`
	AdditionalExpenseType string `firestore:"additionalExpenseType" json:"additionalExpenseType"`
	AdditionalAmount      string `firestore:"additionalAmount" json:"additionalAmount"`
}

// TypeRecord is the store-native shape of an additional expense type.
type TypeRecord struct {
	Name        string `firestore:"name" json:"name"`
	Description string `firestore:"description" json:"description"`
}

// ProfileRecord is the store-native shape of a user profile. Unlike money
// fields these are plain strings already; only timestamps need conversion.
type ProfileRecord struct {
	UID         string `firestore:"uid" json:"uid"`
	Email       string `firestore:"email" json:"email"`
	DisplayName string `firestore:"displayName" json:"displayName"`
	PhotoURL    string `firestore:"photoURL" json:"photoURL"`
	Theme       string `firestore:"theme" json:"theme"`
	Currency    string `firestore:"currency" json:"currency"`
	Language    string `firestore:"language" json:"language"`
}

// EncodeExpense converts a domain expense to its store record, stripping
// ID and timestamps and stringifying every numeric field. Absent optionals
// become the empty string, never "0".
func EncodeExpense(e core.Expense) ExpenseRecord {
	rec := ExpenseRecord{
		Date:        e.Date,
		House:       core.FormatDecimal(core.Float(e.House)),
		TotalElect:  core.FormatDecimal(e.TotalElect),
		RtAcFridge:  core.FormatDecimal(e.RtAcFridge),
		PheaFridge:  core.FormatDecimal(e.PheaFridge),
		Mining:      core.FormatDecimal(e.Mining),
		Electricity: core.FormatDecimal(core.Float(e.Electricity)),
		Water:       core.FormatDecimal(e.Water),
		Waste:       core.FormatDecimal(e.Waste),
		Additional:  core.FormatDecimal(e.Additional),
	}
	for _, u := range e.Users {
		rec.Users = append(rec.Users, UserAllocation{
			ID:                    u.ID,
			Name:                  u.Name,
			Email:                 u.Email,
			Amount:                core.FormatDecimal(core.Float(u.Amount)),
			ElectricityShare:      core.FormatDecimal(core.Float(u.ElectricityShare)),
			Room:                  u.Room,
			AdditionalExpenseType: u.AdditionalExpenseType,
			AdditionalAmount:      core.FormatDecimal(u.AdditionalAmount),
		})
	}
	return rec
}

// DecodeExpense converts a store record back to the domain shape. Numeric
// strings parse to floats; empty or corrupt fields become nil for
// optionals and 0 for required fields, so NaN never escapes the codec.
func DecodeExpense(id string, rec ExpenseRecord, createdAt, updatedAt time.Time) core.Expense {
	e := core.Expense{
		ID:          id,
		Date:        rec.Date,
		House:       floatOrZero(rec.House),
		TotalElect:  core.ParseDecimal(rec.TotalElect),
		RtAcFridge:  core.ParseDecimal(rec.RtAcFridge),
		PheaFridge:  core.ParseDecimal(rec.PheaFridge),
		Mining:      core.ParseDecimal(rec.Mining),
		Electricity: floatOrZero(rec.Electricity),
		Water:       core.ParseDecimal(rec.Water),
		Waste:       core.ParseDecimal(rec.Waste),
		Additional:  core.ParseDecimal(rec.Additional),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	for _, u := range rec.Users {
		e.Users = append(e.Users, core.ExpenseUser{
			ID:                    u.ID,
			Name:                  u.Name,
			Email:                 u.Email,
			Amount:                floatOrZero(u.Amount),
			ElectricityShare:      floatOrZero(u.ElectricityShare),
			Room:                  u.Room,
			AdditionalExpenseType: u.AdditionalExpenseType,
			AdditionalAmount:      core.ParseDecimal(u.AdditionalAmount),
		})
	}
	return e
}

// EncodeType strips ID and timestamps from an additional expense type.
func EncodeType(t core.AdditionalExpenseType) TypeRecord {
	return TypeRecord{Name: t.Name, Description: t.Description}
}

// DecodeType rebuilds the domain type from its record.
func DecodeType(id string, rec TypeRecord, createdAt, updatedAt time.Time) core.AdditionalExpenseType {
	return core.AdditionalExpenseType{
		ID:          id,
		Name:        rec.Name,
		Description: rec.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EncodeProfile flattens a profile for the store.
func EncodeProfile(p core.UserProfile) ProfileRecord {
	return ProfileRecord{
		UID:         p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		Theme:       p.Preferences.Theme,
		Currency:    p.Preferences.Currency,
		Language:    p.Preferences.Language,
	}
}

// DecodeProfile rebuilds a profile from its record.
func DecodeProfile(rec ProfileRecord, createdAt, updatedAt, lastLoginAt time.Time) core.UserProfile {
	return core.UserProfile{
		UID:         rec.UID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		PhotoURL:    rec.PhotoURL,
		Preferences: core.Preferences{
			Theme:    rec.Theme,
			Currency: rec.Currency,
			Language: rec.Language,
		},
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		LastLoginAt: lastLoginAt,
	}
}

func floatOrZero(s string) float64 {
	if v := core.ParseDecimal(s); v != nil {
		return *v
	}
	return 0
}
