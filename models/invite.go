package models

import "time"

// InviteStatus represents the state of an invitation.
type InviteStatus string

// Possible values for InviteStatus.
const (
	InvitePending   InviteStatus = "pending"   // Magic link sent, not yet redeemed.
	InviteCompleted InviteStatus = "completed" // Invitee signed in at least once.
)

// Invite records that a user asked us to send a sign-in link to an e-mail
// address.
type Invite struct {
	ID           string       `db:"id" json:"id"`
	InviterID    string       `db:"inviter_id" json:"inviter_id"`
	InviteeEmail string       `db:"invitee_email" json:"invitee_email"`
	Status       InviteStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// LeaderboardRow is one entry of the invite leaderboard: how many invites a
// single user has sent.
type LeaderboardRow struct {
	InviterID string `db:"inviter_id" json:"inviter_id"`
	Count     int    `db:"count" json:"count"`
}
