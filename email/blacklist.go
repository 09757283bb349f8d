package email

import (
	"encoding/json"
	"fmt"
)

// Recipients lists the email addresses that have triggered a bounce or complaint.
type Recipients []struct {
	EmailAddress string `json:"emailAddress"`
}

// BlacklistRequest represents a submission for a particular email address to
// be blacklisted.
type BlacklistRequest struct {
	Reason     string
	Timestamp  string
	Recipients Recipients
	Raw        string
}

// UnmarshalJSON wrangles the JSON posted by AWS SNS into something easier to
// access and generalized across notification types.
func (r *BlacklistRequest) UnmarshalJSON(b []byte) error {
	// We need to start by unmarshalling Message into a string because the
	// field contains stringified JSON.
	var wrapper struct {
		Message   string
		Timestamp string
	}
	if err := json.Unmarshal(b, &wrapper); err != nil {
		return fmt.Errorf("failed to load notification wrapper: %v", err)
	}

	type Complaint struct {
		*Recipients `json:"complainedRecipients"`
	}

	type Bounce struct {
		*Recipients `json:"bouncedRecipients"`
	}

	// Only one of Complaint or Bounce will contain data, so we can reuse
	// &recipients to capture whichever field holds the list.
	var recipients Recipients
	msg := struct {
		NotificationType string `json:"notificationType"`
		Complaint        `json:"complaint"`
		Bounce           `json:"bounce"`
	}{
		Complaint: Complaint{Recipients: &recipients},
		Bounce:    Bounce{Recipients: &recipients},
	}

	if err := json.Unmarshal([]byte(wrapper.Message), &msg); err != nil {
		return fmt.Errorf("failed to load notification message: %v", err)
	}

	*r = BlacklistRequest{
		Raw:        wrapper.Message,
		Timestamp:  wrapper.Timestamp,
		Reason:     msg.NotificationType,
		Recipients: recipients,
	}
	return nil
}
