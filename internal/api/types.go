package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// TokenPair mirrors the data of /auth/login and /auth/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Credentials is the /auth/login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// List is a page of a collection. The API answers list endpoints either
// with a bare array or with {items, total, skip, limit}; both decode here.
type List[T any] struct {
	Items []T
	Total int
}

func (l *List[T]) UnmarshalJSON(b []byte) error {
	res := gjson.ParseBytes(b)
	switch {
	case res.Type == gjson.Null:
		*l = List[T]{}
		return nil
	case res.IsArray():
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = List[T]{Items: items, Total: len(items)}
		return nil
	case res.IsObject():
		var items []T
		if raw := res.Get("items"); raw.Exists() && raw.Type != gjson.Null {
			if err := json.Unmarshal([]byte(raw.Raw), &items); err != nil {
				return err
			}
		}
		total := len(items)
		if t := res.Get("total"); t.Type == gjson.Number {
			total = int(t.Int())
		}
		*l = List[T]{Items: items, Total: total}
		return nil
	default:
		return fmt.Errorf("unexpected list shape %s", res.Type)
	}
}

// User mirrors UserResponse.
type User struct {
	ID        uuid.UUID `json:"id"`
	RoleID    uuid.UUID `json:"role_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (u User) ParsedCreatedAt() time.Time {
	return ParseTime(u.CreatedAt)
}

// UserCreate is the body of POST /users.
type UserCreate struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	RoleID   uuid.UUID `json:"role_id"`
}

// UserUpdate is the body of PUT /users/{id}. Nil fields are left unchanged.
type UserUpdate struct {
	Username *string    `json:"username,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Password *string    `json:"password,omitempty"`
	RoleID   *uuid.UUID `json:"role_id,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

// UserQuery filters GET /users.
type UserQuery struct {
	Skip     int
	Limit    int
	IsActive *bool
	RoleID   *uuid.UUID
	Search   string
}

// AssetStatus is the lifecycle status of an asset.
type AssetStatus string

const (
	AssetActive         AssetStatus = "active"
	AssetInactive       AssetStatus = "inactive"
	AssetMaintenance    AssetStatus = "maintenance"
	AssetDecommissioned AssetStatus = "decommissioned"
)

// AssetStatuses lists every asset status in display order.
var AssetStatuses = []AssetStatus{AssetActive, AssetInactive, AssetMaintenance, AssetDecommissioned}

// Asset mirrors AssetResponse.
type Asset struct {
	ID             uuid.UUID   `json:"id"`
	AssetCode      string      `json:"asset_code"`
	Name           string      `json:"name"`
	SerialNumber   string      `json:"serial_number"`
	CategoryID     uuid.UUID   `json:"category_id"`
	CurrentStatus  AssetStatus `json:"current_status"`
	AssetCondition *string     `json:"asset_condition"`
	Description    *string     `json:"description"`
	PICUserID      *uuid.UUID  `json:"pic_user_id"`
	CreatedAt      string      `json:"created_at"`
	UpdatedAt      string      `json:"updated_at"`
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (a Asset) ParsedUpdatedAt() time.Time {
	return ParseTime(a.UpdatedAt)
}

// AssetInput is the body of create_asset and update_asset. On update, empty
// strings and nil pointers are omitted so the server keeps its values.
type AssetInput struct {
	AssetCode      string      `json:"asset_code,omitempty"`
	Name           string      `json:"name,omitempty"`
	SerialNumber   string      `json:"serial_number,omitempty"`
	CategoryID     *uuid.UUID  `json:"category_id,omitempty"`
	CurrentStatus  AssetStatus `json:"current_status,omitempty"`
	AssetCondition *string     `json:"asset_condition,omitempty"`
	Description    *string     `json:"description,omitempty"`
	PICUserID      *uuid.UUID  `json:"pic_user_id,omitempty"`
}

// AssetQuery filters list_assets.
type AssetQuery struct {
	Skip       int
	Limit      int
	Status     AssetStatus
	CategoryID *uuid.UUID
	Search     string
}

// LoanStatus is a state of the server's loan state machine.
type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanApproved LoanStatus = "approved"
	LoanRejected LoanStatus = "rejected"
	LoanBorrowed LoanStatus = "borrowed"
	LoanReturned LoanStatus = "returned"
	LoanOverdue  LoanStatus = "overdue"
)

// LoanStatuses lists every loan status in display order.
var LoanStatuses = []LoanStatus{LoanPending, LoanApproved, LoanRejected, LoanBorrowed, LoanReturned, LoanOverdue}

// Loan mirrors LoanResponse.
type Loan struct {
	ID              uuid.UUID  `json:"id"`
	AssetID         uuid.UUID  `json:"asset_id"`
	UserID          uuid.UUID  `json:"user_id"`
	RequestedAt     string     `json:"requested_at"`
	BorrowedAt      *string    `json:"borrowed_at"`
	DueDate         *string    `json:"due_date"`
	ReturnedAt      *string    `json:"returned_at"`
	Status          LoanStatus `json:"loan_status"`
	Notes           *string    `json:"notes"`
	ApprovedBy      *uuid.UUID `json:"approved_by"`
	StatusChangedAt *string    `json:"status_changed_at"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

// ParsedRequestedAt returns the parsed RequestedAt timestamp.
func (l Loan) ParsedRequestedAt() time.Time {
	return ParseTime(l.RequestedAt)
}

// ParsedDueDate returns the parsed due date, zero for open-ended loans.
func (l Loan) ParsedDueDate() time.Time {
	if l.DueDate == nil {
		return time.Time{}
	}
	return ParseTime(*l.DueDate)
}

// OnLoan reports whether the asset is out or about to go out.
func (l Loan) OnLoan() bool {
	return l.Status == LoanBorrowed || l.Status == LoanApproved
}

// LoanCreate is the body of POST /loans.
type LoanCreate struct {
	AssetID uuid.UUID `json:"asset_id"`
	DueDate *string   `json:"due_date,omitempty"`
	Notes   *string   `json:"notes,omitempty"`
}

// LoanTransition is the optional body of approve/reject/start/return.
type LoanTransition struct {
	Notes *string `json:"notes,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTime accepts RFC3339 as well as the naive ISO timestamps the API
// emits; naive values are read as local time.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
