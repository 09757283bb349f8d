package api

import (
	"log"
	"net/http"
)

// Invites is the handler for /api/invites.
//   POST /api/invites
//        email: Address to invite. Requires a session; self-invites are
//        rejected. Records the invite and sends a magic sign-in link.
//   GET  /api/invites
//        Lists the caller's invitations, newest first.
func (api API) invites(r *http.Request) response {
	identity, ok := api.session(r)
	if !ok {
		return response{StatusCode: http.StatusUnauthorized,
			Message: "Please log in first."}
	}
	switch r.Method {
	case http.MethodPost:
		inviteeEmail, err := getEmailParam("email", r)
		if err != nil {
			return badRequest(err.Error())
		}
		if inviteeEmail == normalizeEmail(identity.Email) {
			return badRequest("You can't invite yourself.")
		}
		invite, err := api.Database.PutInvite(identity.UserID, inviteeEmail)
		if err != nil {
			return serverError(err.Error())
		}
		token, err := api.Auth.IssueLoginToken(inviteeEmail)
		if err != nil {
			return serverError(err.Error())
		}
		if err := api.Emailer.SendSignInLink(inviteeEmail, token); err != nil {
			log.Print(err)
			return response{
				StatusCode: http.StatusInternalServerError,
				Message:    "Failed to send invite.",
				Response:   invite,
			}
		}
		return response{StatusCode: http.StatusCreated, Response: invite}
	case http.MethodGet:
		invites, err := api.Database.GetInvites(identity.UserID)
		if err != nil {
			return serverError(err.Error())
		}
		return response{StatusCode: http.StatusOK, Response: invites}
	default:
		return response{StatusCode: http.StatusMethodNotAllowed,
			Message: "/api/invites only accepts POST and GET requests"}
	}
}

// InviteLeaderboard is the handler for /api/invites/leaderboard
//   GET /api/invites/leaderboard
//        Invite counts per inviter, highest first.
func (api API) inviteLeaderboard(r *http.Request) response {
	if r.Method != http.MethodGet {
		return response{StatusCode: http.StatusMethodNotAllowed,
			Message: "/api/invites/leaderboard only accepts GET requests"}
	}
	if _, ok := api.session(r); !ok {
		return response{StatusCode: http.StatusUnauthorized,
			Message: "Please log in first."}
	}
	board, err := api.Database.GetInviteLeaderboard()
	if err != nil {
		return serverError(err.Error())
	}
	return response{StatusCode: http.StatusOK, Response: board}
}
