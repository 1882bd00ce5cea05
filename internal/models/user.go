package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the staff or customer role carried in a caller's token
type Role string

const (
	RoleCustomer         Role = "customer"
	RoleTeller           Role = "teller"
	RoleAccountExecutive Role = "account_executive"
)

// User is an account holder or staff member
type User struct {
	CreatedAt          time.Time `db:"created_at"`
	Username           string    `db:"username"`
	Email              string    `db:"email"`
	FullName           string    `db:"full_name"`
	SecurityQuestion   string    `db:"security_question"`
	SecurityAnswerHash string    `db:"security_answer_hash"`
	Role               Role      `db:"role"`
	ID                 uuid.UUID `db:"id"`
}
