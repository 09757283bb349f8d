package api

import (
	"log"
	"net/http"

	"github.com/newsportal/news-backend/models"
)

// Login is the handler for /api/auth/login
//   POST /api/auth/login
//        email: Address to sign in. Upserts the account and e-mails a magic
//        sign-in link. Sign-in is passwordless.
func (api API) login(r *http.Request) response {
	if r.Method != http.MethodPost {
		return response{StatusCode: http.StatusMethodNotAllowed,
			Message: "/api/auth/login only accepts POST requests"}
	}
	address, err := getEmailParam("email", r)
	if err != nil {
		return badRequest(err.Error())
	}
	if _, err := api.Database.PutUser(address); err != nil {
		return serverError(err.Error())
	}
	token, err := api.Auth.IssueLoginToken(address)
	if err != nil {
		return serverError(err.Error())
	}
	if err := api.Emailer.SendSignInLink(address, token); err != nil {
		log.Print(err)
		return serverError("Unable to send sign-in e-mail")
	}
	return response{
		StatusCode: http.StatusOK,
		Response:   "Check your inbox for a sign-in link.",
	}
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// AuthCallback is the handler for /api/auth/callback
//   GET /api/auth/callback?token=<login token>
//        Redeems a magic sign-in link: verifies the token, completes any
//        pending invites for the address, and returns a session token.
func (api API) authCallback(r *http.Request) response {
	if r.Method != http.MethodGet {
		return response{StatusCode: http.StatusMethodNotAllowed,
			Message: "/api/auth/callback only accepts GET requests"}
	}
	token, err := getParam("token", r)
	if err != nil {
		return badRequest(err.Error())
	}
	address, err := api.Auth.VerifyLoginToken(token)
	if err != nil {
		return badRequest("Invalid or expired sign-in link.")
	}
	user, err := api.Database.PutUser(address)
	if err != nil {
		return serverError(err.Error())
	}
	// First sign-in from an invited address completes the invite.
	if err := api.Database.CompleteInvites(address); err != nil {
		return serverError(err.Error())
	}
	session, err := api.Auth.IssueSession(user)
	if err != nil {
		return serverError(err.Error())
	}
	return response{
		StatusCode: http.StatusOK,
		Response:   sessionResponse{Token: session, User: user},
	}
}
