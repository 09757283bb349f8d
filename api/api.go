package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	raven "github.com/getsentry/raven-go"
	"golang.org/x/net/idna"

	"github.com/newsportal/news-backend/auth"
	"github.com/newsportal/news-backend/db"
	"github.com/newsportal/news-backend/email"
	"github.com/newsportal/news-backend/news"
)

////////////////////////////////
//  *****   REST API   *****  //
////////////////////////////////

// API is the HTTP API that this service provides.
// All requests respond with a response JSON, with fields:
// {
//     status_code // HTTP status code of request
//     message // Any error message accompanying the status_code. If 2xx, empty.
//     response // Response data (as JSON) from this request.
// }
// Any POST request accepts either URL query parameters or data value
// parameters, and prefers the latter if both are present.
type API struct {
	Database db.Database
	Emailer  EmailSender
	News     NewsFetcher
	Auth     *auth.Service
}

// EmailSender interface wraps a back-end that can send e-mails.
type EmailSender interface {
	// SendConfirmation sends the decision-bearing message for a
	// confirmation request: a confirm and a deny link, same id.
	SendConfirmation(targetEmail string, newsTitle string, confirmationID string) error
	// SendSignInLink delivers a magic sign-in link.
	SendSignInLink(targetEmail string, token string) error
}

// NewsFetcher interface wraps the external news aggregator.
type NewsFetcher interface {
	Latest(countryCode string, query string) ([]news.Article, error)
}

type response struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Response   interface{} `json:"response"`
}

type apiHandler func(r *http.Request) response

func (api *API) wrapper(handler apiHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		response := handler(r)
		if response.StatusCode == http.StatusInternalServerError {
			packet := raven.NewPacket(response.Message, raven.NewHttp(r))
			raven.Capture(packet, nil)
		}
		if strings.Contains(r.Header.Get("accept"), "text/html") {
			writeHTML(w, response)
		} else {
			writeJSON(w, response)
		}
	}
}

func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
}

// RegisterHandlers binds API functions to the given http server,
// and returns the resulting handler.
func (api *API) RegisterHandlers(mux *http.ServeMux) http.Handler {
	mux.HandleFunc("/sns", HandleSESNotification(api.Database))
	mux.Handle("/api/confirm-author",
		throttleHandler(time.Hour, 20, http.HandlerFunc(api.wrapper(api.confirmAuthor))))
	// The emailed decision links point here.
	mux.HandleFunc("/confirm-author", api.wrapper(api.confirmAuthor))
	mux.HandleFunc("/api/confirm-author/status", api.wrapper(api.confirmationStatus))
	mux.HandleFunc("/api/email/confirmation", api.dispatchConfirmation)
	mux.HandleFunc("/api/news", api.wrapper(api.newsHandler))
	mux.HandleFunc("/api/saved", api.wrapper(api.saved))
	mux.HandleFunc("/api/invites", api.wrapper(api.invites))
	mux.HandleFunc("/api/invites/leaderboard", api.wrapper(api.inviteLeaderboard))
	mux.HandleFunc("/api/auth/login", api.wrapper(api.login))
	mux.HandleFunc("/api/auth/callback", api.wrapper(api.authCallback))
	mux.HandleFunc("/api/ping", pingHandler)
	return middleware(mux)
}

// session resolves the caller's identity from the Authorization header.
func (api API) session(r *http.Request) (auth.Identity, bool) {
	token := auth.BearerToken(r)
	if token == "" {
		return auth.Identity{}, false
	}
	identity, err := api.Auth.VerifySession(token)
	if err != nil {
		return auth.Identity{}, false
	}
	return identity, true
}

// Retrieves `param` as a query parameter from `http.Request` r.
// If it is missing, returns an error.
func getParam(param string, r *http.Request) (string, error) {
	value := strings.TrimSpace(r.FormValue(param))
	if value == "" {
		return "", fmt.Errorf("query parameter %s not specified", param)
	}
	return value, nil
}

// getEmailParam retrieves and normalizes an e-mail address parameter.
func getEmailParam(param string, r *http.Request) (string, error) {
	value, err := getParam(param, r)
	if err != nil {
		return "", err
	}
	return normalizeEmail(value), nil
}

// normalizeEmail lowercases an address and converts a unicode domain part to
// ASCII, so that case or encoding differences can't defeat same-address
// comparisons.
func normalizeEmail(address string) string {
	addr := strings.ToLower(strings.TrimSpace(address))
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return addr
	}
	domain, err := idna.ToASCII(addr[at+1:])
	if err != nil {
		return addr
	}
	return addr[:at+1] + domain
}

// Writes the response as a JSON object to http.ResponseWriter `w`. If an
// error occurs, writes `http.StatusInternalServerError` to `w`.
func writeJSON(w http.ResponseWriter, apiResponse response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiResponse.StatusCode)
	b, err := json.MarshalIndent(apiResponse, "", "  ")
	if err != nil {
		msg := fmt.Sprintf("Internal error: could not format JSON. (%s)\n", err)
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "%s\n", b)
}

const defaultTemplateText = `<!DOCTYPE html>
<html>
<head><title>News Portal</title></head>
<body>
  <h1>{{.StatusText}}</h1>
  {{if .Message}}<p>{{.Message}}</p>{{end}}
</body>
</html>
`

var defaultTemplate = template.Must(template.New("default").Parse(defaultTemplateText))

func writeHTML(w http.ResponseWriter, apiResponse response) {
	data := struct {
		response
		StatusText string
	}{
		response:   apiResponse,
		StatusText: http.StatusText(apiResponse.StatusCode),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(apiResponse.StatusCode)
	if err := defaultTemplate.Execute(w, data); err != nil {
		log.Println(err)
		raven.CaptureError(err, nil)
	}
}

func badRequest(format string, a ...interface{}) response {
	return response{
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf(format, a...),
	}
}

func serverError(format string, a ...interface{}) response {
	return response{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf(format, a...),
	}
}

type ravenExtraContent string

// Class satisfies raven's Interface interface so we can send this as extra context.
// https://github.com/getsentry/raven-go/issues/125
func (r ravenExtraContent) Class() string {
	return "extra"
}

func (r ravenExtraContent) MarshalJSON() ([]byte, error) {
	return []byte(r), nil
}

// HandleSESNotification handles AWS SES bounces and complaints submitted to a
// webhook via AWS SNS (Simple Notification Service).
// The SNS webhook is configured to include a secret API key stored in the
// environment.
func HandleSESNotification(database db.Database) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		keyParam := r.URL.Query()["amazon_authorize_key"]
		if len(keyParam) == 0 || keyParam[0] != os.Getenv("AMAZON_AUTHORIZE_KEY") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			raven.CaptureError(err, nil)
			return
		}

		data := &email.BlacklistRequest{}
		err = json.Unmarshal(body, data)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			raven.CaptureError(err, nil, ravenExtraContent(body))
			return
		}

		tags := map[string]string{"notification_type": data.Reason}
		raven.CaptureMessage("Received SES notification", tags, ravenExtraContent(data.Raw))

		for _, recipient := range data.Recipients {
			err = database.PutBlacklistedEmail(recipient.EmailAddress, data.Reason, data.Timestamp)
			if err != nil {
				raven.CaptureError(err, nil)
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}
