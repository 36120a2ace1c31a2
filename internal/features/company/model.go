package company

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var SupportedCurrencies = []string{"USD", "EUR", "GBP", "INR", "CAD", "AUD", "JPY", "CNY"}

func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type Settings struct {
	MaxExpenseAmount    float64 `bson:"max_expense_amount" json:"maxExpenseAmount"`
	RequireReceiptAbove float64 `bson:"require_receipt_above" json:"requireReceiptAbove"`
	AutoApprovalLimit   float64 `bson:"auto_approval_limit" json:"autoApprovalLimit"`
	FiscalYearStart     string  `bson:"fiscal_year_start" json:"fiscalYearStart"`
}

// Company owns users, approval rules and expenses. DefaultCurrency is the
// conversion target for every submitted expense.
type Company struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Country         string             `bson:"country" json:"country"`
	DefaultCurrency string             `bson:"default_currency" json:"defaultCurrency"`
	Address         Address            `bson:"address,omitempty" json:"address,omitempty"`
	Settings        Settings           `bson:"settings" json:"settings"`
	IsActive        bool               `bson:"is_active" json:"isActive"`
	AdminUser       primitive.ObjectID `bson:"admin_user,omitempty" json:"adminUser,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// DefaultSettings mirrors the defaults companies start with
func DefaultSettings() Settings {
	return Settings{
		MaxExpenseAmount:    10000,
		RequireReceiptAbove: 100,
		AutoApprovalLimit:   50,
		FiscalYearStart:     "January",
	}
}
