package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"

	"github.com/newsportal/news-backend/util"
)

type blacklistStore interface {
	IsBlacklistedEmail(string) (bool, error)
}

// Config stores variables needed to submit emails for sending, as well as
// to generate the message bodies.
type Config struct {
	auth               smtp.Auth
	username           string
	password           string
	submissionHostname string
	port               string
	sender             string
	website            string // Base URL for the decision and sign-in links.
	database           blacklistStore
}

// MakeConfigFromEnv initializes our email config object with
// environment variables.
func MakeConfigFromEnv(database blacklistStore) (Config, error) {
	// create config
	varErrs := util.Errors{}
	c := Config{
		username:           util.RequireEnv("SMTP_USERNAME", &varErrs),
		password:           util.RequireEnv("SMTP_PASSWORD", &varErrs),
		submissionHostname: util.RequireEnv("SMTP_ENDPOINT", &varErrs),
		port:               util.RequireEnv("SMTP_PORT", &varErrs),
		sender:             util.RequireEnv("SMTP_FROM_ADDRESS", &varErrs),
		website:            util.RequireEnv("FRONTEND_WEBSITE_LINK", &varErrs),
		database:           database,
	}
	if len(varErrs) > 0 {
		return c, varErrs
	}
	log.Printf("Establishing auth connection with SMTP server %s", c.submissionHostname)
	// create auth
	client, err := smtp.Dial(fmt.Sprintf("%s:%s", c.submissionHostname, c.port))
	if err != nil {
		return c, err
	}
	defer client.Close()
	err = client.StartTLS(&tls.Config{ServerName: c.submissionHostname})
	if err != nil {
		return c, fmt.Errorf("SMTP server doesn't support STARTTLS")
	}
	ok, auths := client.Extension("AUTH")
	if !ok {
		return c, fmt.Errorf("remote SMTP server doesn't support any authentication mechanisms")
	}
	if strings.Contains(auths, "PLAIN") {
		c.auth = smtp.PlainAuth("", c.username, c.password, c.submissionHostname)
	} else if strings.Contains(auths, "CRAM-MD5") {
		c.auth = smtp.CRAMMD5Auth(c.username, c.password)
	} else {
		return c, fmt.Errorf("SMTP server doesn't support PLAIN or CRAM-MD5 authentication")
	}
	return c, nil
}

// DecisionLinks returns the confirm and deny URLs for a confirmation id. The
// deny variant is the same URL with an explicit deny marker.
func (c Config) DecisionLinks(confirmationID string) (string, string) {
	confirmLink := fmt.Sprintf("%s/confirm-author?id=%s", c.website, confirmationID)
	return confirmLink, confirmLink + "&deny=true"
}

// confirmationEmailBody renders the confirmation message. The news title is
// untrusted input; html/template escapes it so it lands in the message as
// data, not markup.
func confirmationEmailBody(newsTitle string, confirmLink string, denyLink string) (string, error) {
	var body bytes.Buffer
	err := confirmationTemplate.Execute(&body, struct {
		NewsTitle   string
		ConfirmLink template.URL
		DenyLink    template.URL
	}{newsTitle, template.URL(confirmLink), template.URL(denyLink)})
	return body.String(), err
}

// SendConfirmation sends the authorship decision message for a confirmation
// request: one link per terminal state, both carrying the same id.
func (c Config) SendConfirmation(targetEmail string, newsTitle string, confirmationID string) error {
	confirmLink, denyLink := c.DecisionLinks(confirmationID)
	body, err := confirmationEmailBody(newsTitle, confirmLink, denyLink)
	if err != nil {
		return err
	}
	return c.sendEmail(confirmationEmailSubject, body, targetEmail)
}

// SendSignInLink sends a magic sign-in link, used both for logins and for
// inviting a new user to the portal.
func (c Config) SendSignInLink(targetEmail string, token string) error {
	link := fmt.Sprintf("%s/auth/callback?token=%s", c.website, token)
	body := fmt.Sprintf(signInEmailTemplate, link)
	return c.sendEmail(signInEmailSubject, body, targetEmail)
}

func (c Config) sendEmail(subject string, body string, address string) error {
	if c.database != nil {
		blacklisted, err := c.database.IsBlacklistedEmail(address)
		if err != nil {
			return err
		}
		if blacklisted {
			return fmt.Errorf("address %s is blacklisted", address)
		}
	}
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s",
		c.sender, address, subject, body)
	if c.submissionHostname == "" {
		log.Println("Warning: email host not configured, not sending email")
		log.Println(message)
		return nil
	}
	return smtp.SendMail(fmt.Sprintf("%s:%s", c.submissionHostname, c.port),
		c.auth,
		c.sender, []string{address}, []byte(message))
}
