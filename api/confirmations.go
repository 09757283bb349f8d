package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/newsportal/news-backend/models"
)

// ConfirmAuthor is the handler for /api/confirm-author (and /confirm-author,
// where the emailed decision links land).
//   POST /api/confirm-author
//        email: Address being asked to confirm authorship.
//        title: Title of the news item in question.
//        Requires a session. Creates a pending confirmation request and
//        dispatches the decision e-mail.
//   GET  /confirm-author?id=<id>&deny=true|absent
//        Resolves a confirmation from a clicked decision link.
func (api API) confirmAuthor(r *http.Request) response {
	switch r.Method {
	case http.MethodPost:
		return api.requestConfirmation(r)
	case http.MethodGet:
		return api.resolveConfirmation(r)
	default:
		return response{StatusCode: http.StatusMethodNotAllowed,
			Message: "/api/confirm-author only accepts POST and GET requests"}
	}
}

func (api API) requestConfirmation(r *http.Request) response {
	identity, ok := api.session(r)
	if !ok {
		return response{StatusCode: http.StatusUnauthorized,
			Message: "Please log in first."}
	}
	targetEmail, err := getEmailParam("email", r)
	if err != nil {
		return badRequest(err.Error())
	}
	newsTitle, err := getParam("title", r)
	if err != nil {
		return badRequest(err.Error())
	}
	if targetEmail == normalizeEmail(identity.Email) {
		return badRequest("You cannot send a confirmation to your own email.")
	}
	confirmation, err := api.Database.PutConfirmation(identity.UserID, targetEmail)
	if err != nil {
		return serverError(err.Error())
	}
	if err = api.Emailer.SendConfirmation(targetEmail, newsTitle, confirmation.ID); err != nil {
		log.Print(err)
		// The pending record is kept; delivery can be retried through
		// /api/email/confirmation with the same id.
		return response{
			StatusCode: http.StatusInternalServerError,
			Message:    "Unable to send confirmation e-mail. The request was recorded; retry delivery instead of re-submitting.",
			Response:   confirmation,
		}
	}
	return response{
		StatusCode: http.StatusCreated,
		Response:   confirmation,
	}
}

func (api API) resolveConfirmation(r *http.Request) response {
	id := r.FormValue("id")
	if id == "" {
		return badRequest("Invalid or missing confirmation link.")
	}
	deny := r.FormValue("deny") == "true"
	confirmation, err := models.Confirmation{ID: id}.Resolve(api.Database, deny)
	switch err {
	case nil:
		message := "You confirmed authorship. Thank you!"
		if deny {
			message = "You denied authorship."
		}
		return response{
			StatusCode: http.StatusOK,
			Message:    message,
			Response:   confirmation,
		}
	case models.ErrAlreadyResolved:
		// A legitimate idempotent outcome, not a failure: disclose the
		// earlier decision and change nothing.
		return response{
			StatusCode: http.StatusOK,
			Message:    fmt.Sprintf("This confirmation has already been %s.", confirmation.Status),
			Response:   confirmation,
		}
	case models.ErrNotFound:
		return badRequest("Invalid or expired confirmation.")
	default:
		return serverError(err.Error())
	}
}

// ConfirmationStatus is the handler for /api/confirm-author/status
//   GET /api/confirm-author/status
//        Requires a session. Lists the caller's confirmation requests,
//        newest first.
func (api API) confirmationStatus(r *http.Request) response {
	if r.Method != http.MethodGet {
		return response{StatusCode: http.StatusMethodNotAllowed,
			Message: "/api/confirm-author/status only accepts GET requests"}
	}
	identity, ok := api.session(r)
	if !ok {
		return response{StatusCode: http.StatusUnauthorized,
			Message: "Please log in first."}
	}
	confirmations, err := api.Database.GetConfirmations(identity.UserID)
	if err != nil {
		return serverError(err.Error())
	}
	return response{StatusCode: http.StatusOK, Response: confirmations}
}

type dispatchRequest struct {
	Email          string `json:"email"`
	NewsTitle      string `json:"newsTitle"`
	ConfirmationID string `json:"confirmationId"`
}

type dispatchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func writeDispatchResponse(w http.ResponseWriter, statusCode int, body dispatchResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// DispatchConfirmation is the handler for /api/email/confirmation
//   POST /api/email/confirmation
//        {"email": ..., "newsTitle": ..., "confirmationId": ...}
// Sends (or re-sends) the decision e-mail for an existing confirmation
// request. This is the retry path when the dispatch during creation failed;
// the address comes from the stored record, not the request body.
func (api *API) dispatchConfirmation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDispatchResponse(w, http.StatusMethodNotAllowed,
			dispatchResponse{Success: false, Error: "only POST requests are accepted"})
		return
	}
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDispatchResponse(w, http.StatusBadRequest,
			dispatchResponse{Success: false, Error: "could not parse request body"})
		return
	}
	if req.ConfirmationID == "" || req.NewsTitle == "" {
		writeDispatchResponse(w, http.StatusBadRequest,
			dispatchResponse{Success: false, Error: "newsTitle and confirmationId are required"})
		return
	}
	confirmation, err := api.Database.GetConfirmation(req.ConfirmationID)
	if err == models.ErrNotFound {
		writeDispatchResponse(w, http.StatusBadRequest,
			dispatchResponse{Success: false, Error: "no such confirmation"})
		return
	}
	if err != nil {
		writeDispatchResponse(w, http.StatusInternalServerError,
			dispatchResponse{Success: false, Error: err.Error()})
		return
	}
	if err := api.Emailer.SendConfirmation(confirmation.TargetEmail, req.NewsTitle, confirmation.ID); err != nil {
		log.Print(err)
		writeDispatchResponse(w, http.StatusInternalServerError,
			dispatchResponse{Success: false, Error: "Failed to send email"})
		return
	}
	writeDispatchResponse(w, http.StatusOK, dispatchResponse{Success: true})
}
