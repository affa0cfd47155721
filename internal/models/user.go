package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRole enumerates the fixed set of account roles.
type UserRole string

const (
	RoleAdmin            UserRole = "ADMIN"
	RoleFinance          UserRole = "FINANCE"
	RoleCashier          UserRole = "CASHIER"
	RoleCustomerInHouse  UserRole = "CUSTOMER_INHOUSE"
	RoleCustomerDelivery UserRole = "CUSTOMER_DELIVERY"
)

// UserStatus represents account activation state.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// WalkInCustomerID is the reserved customer id for sales with no account.
// Invoices carrying it never touch any balance.
const WalkInCustomerID = "WALK_IN"

// User is an identity plus a credit account. CurrentBalance is the amount
// the customer owes the shop and must only change through the invoice
// ledger operations.
type User struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Mobile         string          `json:"mobile"`
	Email          string          `json:"email,omitempty"`
	Address        string          `json:"address,omitempty"`
	Username       string          `json:"username"`
	RedboxID       string          `json:"redbox_id,omitempty"`
	Role           UserRole        `json:"role"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Notes          string          `json:"notes,omitempty"`
	Status         UserStatus      `json:"status"`
	JoinedDate     time.Time       `json:"joined_date"`

	// Password is compared in plain text; this deployment model keeps all
	// state on a trusted single machine.
	Password string `json:"password,omitempty"`

	// Delivery profile, required before delivery requests are accepted.
	DeliveryAddressLine string `json:"delivery_address_line,omitempty"`
	DeliveryArea        string `json:"delivery_area,omitempty"`
	DeliveryCity        string `json:"delivery_city,omitempty"`
	DeliveryNotes       string `json:"delivery_notes,omitempty"`
}

// HasDeliveryProfile reports whether the delivery address fields needed to
// accept a delivery request are all present.
func (u *User) HasDeliveryProfile() bool {
	return u.DeliveryAddressLine != "" && u.DeliveryArea != "" && u.DeliveryCity != ""
}
