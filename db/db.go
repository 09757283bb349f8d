package db

import (
	"flag"
	"os"
	"time"

	"github.com/newsportal/news-backend/models"
)

// Database is everything the portal needs from its persistence backend.
// Slightly more limited than CRUD for each of the schemas; transition
// legality for confirmations is enforced by ResolveConfirmation's
// conditional write, not by callers reading then writing.
type Database interface {
	// Creates a pending confirmation request.
	PutConfirmation(requesterID string, targetEmail string) (models.Confirmation, error)
	// Retrieves a confirmation request by id.
	GetConfirmation(id string) (models.Confirmation, error)
	// Applies the one-shot pending -> confirmed|denied transition.
	// Returns models.ErrAlreadyResolved if the record already left pending,
	// models.ErrNotFound if no such record exists.
	ResolveConfirmation(id string, status models.ConfirmationStatus, respondedAt time.Time) error
	// Retrieves a requester's confirmations, newest first.
	GetConfirmations(requesterID string) ([]models.Confirmation, error)

	// Upserts a portal account by e-mail address.
	PutUser(email string) (models.User, error)
	// Retrieves an account by e-mail address.
	GetUserByEmail(email string) (models.User, error)

	// Stores a user-submitted news article.
	PutArticle(models.Article) (models.Article, error)
	// Retrieves submitted articles for a country, newest first.
	GetArticles(countryCode string) ([]models.Article, error)

	// Pins a search result to a user's favorites.
	PutSavedArticle(models.SavedArticle) (models.SavedArticle, error)
	// Retrieves a user's favorites, newest first.
	GetSavedArticles(userID string) ([]models.SavedArticle, error)
	// Removes one of the user's own favorites.
	RemoveSavedArticle(id string, userID string) error

	// Records an invitation.
	PutInvite(inviterID string, inviteeEmail string) (models.Invite, error)
	// Retrieves invitations sent by a user, newest first.
	GetInvites(inviterID string) ([]models.Invite, error)
	// Marks pending invites for an address completed once it signs in.
	CompleteInvites(inviteeEmail string) error
	// Invite counts per inviter, highest first.
	GetInviteLeaderboard() ([]models.LeaderboardRow, error)

	// Adds a bounce or complaint notification to the e-mail blacklist.
	PutBlacklistedEmail(email string, reason string, timestamp string) error
	// Returns true if we've blacklisted an e-mail address.
	IsBlacklistedEmail(email string) (bool, error)

	ClearTables() error
}

// Config is a configuration struct for a Database.
type Config struct {
	Port       string
	DbHost     string
	DbName     string
	DbUsername string
	DbPass     string
}

// Default configuration values. Can be overwritten by env vars of the same name.
var configDefaults = map[string]string{
	"PORT":         "8080",
	"DB_HOST":      "localhost",
	"DB_NAME":      "newsportal",
	"DB_USERNAME":  "postgres",
	"DB_PASSWORD":  "postgres",
	"TEST_DB_NAME": "newsportal_test",
}

func getEnvOrDefault(varName string) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		envVar = configDefaults[varName]
	}
	return envVar
}

// LoadEnvironmentVariables loads relevant environment variables into a
// Config object.
func LoadEnvironmentVariables() (Config, error) {
	config := Config{
		Port:       getEnvOrDefault("PORT"),
		DbHost:     getEnvOrDefault("DB_HOST"),
		DbName:     getEnvOrDefault("DB_NAME"),
		DbUsername: getEnvOrDefault("DB_USERNAME"),
		DbPass:     getEnvOrDefault("DB_PASSWORD"),
	}
	if flag.Lookup("test.v") != nil {
		// Avoid accidentally wiping the default db during tests.
		config.DbName = getEnvOrDefault("TEST_DB_NAME")
	}
	return config, nil
}
