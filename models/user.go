package models

import "time"

// User is a portal account. Accounts are passwordless; they come into
// existence the first time an address requests or redeems a sign-in link.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
