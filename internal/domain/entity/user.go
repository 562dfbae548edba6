package entity

import (
	"time"
)

// Roles as assigned by the identity collaborator. This core trusts them as
// already-verified input and never re-derives them.
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Username string `json:"username" firestore:"username"`
	Role     string `json:"role" firestore:"role"`
	Status   string `json:"status" firestore:"status"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// IsOperator reports whether the user may act on disputes as staff.
func (u *User) IsOperator() bool {
	return u.Role == RoleOperator || u.Role == RoleAdmin
}
