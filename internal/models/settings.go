package models

import "github.com/shopspring/decimal"

// AppSettings is the single shop-wide configuration record.
type AppSettings struct {
	ShopName           string          `json:"shop_name"`
	Logo               string          `json:"logo,omitempty"`
	Island             string          `json:"island,omitempty"`
	Country            string          `json:"country,omitempty"`
	ContactNumber      string          `json:"contact_number,omitempty"`
	Email              string          `json:"email,omitempty"`
	DefaultCreditLimit decimal.Decimal `json:"default_credit_limit"`
	Currency           string          `json:"currency"`
	BankDetails        string          `json:"bank_details,omitempty"`
}

// DefaultSettings seeds a fresh store before an admin customizes anything.
func DefaultSettings() AppSettings {
	return AppSettings{
		ShopName:           "Fridge MV POS",
		Island:             "Male'",
		Country:            "Maldives",
		DefaultCreditLimit: decimal.NewFromInt(500),
		Currency:           "MVR",
	}
}
