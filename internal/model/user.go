package model

import "time"

const (
	RoleOwner  = "owner"
	RoleWorker = "worker"
)

// OwnerUsername is the reserved account seeded on first startup. It always
// exists and can never be deleted.
const (
	OwnerUsername = "owner"
	OwnerUserID   = "user_owner"
)

type User struct {
	ID       string   `json:"-"`
	Revision Revision `json:"-"`

	Username  string    `json:"username"`
	PIN       string    `json:"pin"` // 4-digit PIN, stored in clear
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}
