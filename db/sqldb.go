package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	// Imports postgresql driver for database/sql
	_ "github.com/lib/pq"
	"gopkg.in/gorp.v2"

	"github.com/newsportal/news-backend/models"
)

// SQLDatabase is a Database interface backed by postgresql.
type SQLDatabase struct {
	cfg  Config // Configuration to define the DB connection.
	conn *gorp.DbMap
}

// EmailBlacklistData stores the emails from which we've received bounce or
// complaint notifications.
type EmailBlacklistData struct {
	ID        int64  `db:"id"`
	Email     string `db:"email"`
	Timestamp string `db:"timestamp"`
	Reason    string `db:"reason"` // eg. "bounce" or "complaint"
}

func getConnectionString(cfg Config) string {
	connectionString := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		url.PathEscape(cfg.DbUsername),
		url.PathEscape(cfg.DbPass),
		url.PathEscape(cfg.DbHost),
		url.PathEscape(cfg.DbName))
	return connectionString
}

// InitSQLDatabase creates a DB connection based on information in a Config,
// and returns a pointer to the resulting SQLDatabase object. If connection
// fails, returns an error.
func InitSQLDatabase(cfg Config) (*SQLDatabase, error) {
	connectionString := getConnectionString(cfg)
	log.Printf("Connecting to Postgres DB ...\n")
	conn, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	return NewSQLDatabase(cfg, conn), nil
}

// NewSQLDatabase wraps an existing database/sql connection. Split out from
// InitSQLDatabase so tests can hand in a mocked connection.
func NewSQLDatabase(cfg Config, conn *sql.DB) *SQLDatabase {
	dbmap := &gorp.DbMap{Db: conn, Dialect: gorp.PostgresDialect{}}
	dbmap.AddTableWithName(models.Confirmation{}, "confirmations").SetKeys(false, "ID")
	dbmap.AddTableWithName(models.User{}, "users").SetKeys(false, "ID")
	dbmap.AddTableWithName(models.Article{}, "articles").SetKeys(false, "ID")
	dbmap.AddTableWithName(models.SavedArticle{}, "saved_articles").SetKeys(false, "ID")
	dbmap.AddTableWithName(models.Invite{}, "invites").SetKeys(false, "ID")
	dbmap.AddTableWithName(EmailBlacklistData{}, "blacklisted_emails").SetKeys(true, "ID")
	return &SQLDatabase{cfg: cfg, conn: dbmap}
}

// CONFIRMATION DB FUNCTIONS

// PutConfirmation inserts a new pending confirmation request and returns the
// resulting row.
func (db *SQLDatabase) PutConfirmation(requesterID string, targetEmail string) (models.Confirmation, error) {
	confirmation := models.Confirmation{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		TargetEmail: targetEmail,
		Status:      models.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	return confirmation, db.conn.Insert(&confirmation)
}

// GetConfirmation retrieves the confirmation request with the given id.
func (db SQLDatabase) GetConfirmation(id string) (models.Confirmation, error) {
	var confirmation models.Confirmation
	err := db.conn.SelectOne(&confirmation,
		"SELECT * FROM confirmations WHERE id=$1", id)
	if err == sql.ErrNoRows {
		return confirmation, models.ErrNotFound
	}
	return confirmation, err
}

// ResolveConfirmation transitions a pending confirmation to its terminal
// status. The status check happens inside the UPDATE itself, so two racing
// decision-link clicks cannot both win.
func (db *SQLDatabase) ResolveConfirmation(id string, status models.ConfirmationStatus, respondedAt time.Time) error {
	result, err := db.conn.Exec(
		"UPDATE confirmations SET status=$1, responded_at=$2 WHERE id=$3 AND status=$4",
		string(status), respondedAt, id, string(models.StatusPending))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Nothing transitioned: the record is either gone or already
		// resolved.
		if _, err := db.GetConfirmation(id); err != nil {
			return err
		}
		return models.ErrAlreadyResolved
	}
	return nil
}

// GetConfirmations retrieves every confirmation a requester has created,
// newest first.
func (db SQLDatabase) GetConfirmations(requesterID string) ([]models.Confirmation, error) {
	ptrs := []*models.Confirmation{}
	_, err := db.conn.Select(&ptrs,
		"SELECT * FROM confirmations WHERE requester_id=$1 ORDER BY created_at DESC", requesterID)
	confirmations := []models.Confirmation{}
	for _, c := range ptrs {
		confirmations = append(confirmations, *c)
	}
	return confirmations, err
}

// USER DB FUNCTIONS

// PutUser upserts a portal account for an e-mail address and returns the row,
// whether it already existed or was just created.
func (db *SQLDatabase) PutUser(email string) (models.User, error) {
	_, err := db.conn.Exec(
		"INSERT INTO users(id, email, created_at) VALUES($1, $2, $3) ON CONFLICT (email) DO NOTHING",
		uuid.NewString(), email, time.Now().UTC())
	if err != nil {
		return models.User{}, err
	}
	return db.GetUserByEmail(email)
}

// GetUserByEmail retrieves the account for an e-mail address.
func (db SQLDatabase) GetUserByEmail(email string) (models.User, error) {
	var user models.User
	err := db.conn.SelectOne(&user, "SELECT * FROM users WHERE email=$1", email)
	if err == sql.ErrNoRows {
		return user, models.ErrNotFound
	}
	return user, err
}

// ARTICLE DB FUNCTIONS

// PutArticle stores a user-submitted news article.
func (db *SQLDatabase) PutArticle(article models.Article) (models.Article, error) {
	article.ID = uuid.NewString()
	article.CreatedAt = time.Now().UTC()
	return article, db.conn.Insert(&article)
}

// GetArticles retrieves the submitted articles for a country, newest first.
func (db SQLDatabase) GetArticles(countryCode string) ([]models.Article, error) {
	ptrs := []*models.Article{}
	_, err := db.conn.Select(&ptrs,
		"SELECT * FROM articles WHERE country_code=$1 ORDER BY created_at DESC", countryCode)
	articles := []models.Article{}
	for _, a := range ptrs {
		articles = append(articles, *a)
	}
	return articles, err
}

// SAVED ARTICLE DB FUNCTIONS

// PutSavedArticle pins a search result to the owning user's favorites.
func (db *SQLDatabase) PutSavedArticle(saved models.SavedArticle) (models.SavedArticle, error) {
	saved.ID = uuid.NewString()
	saved.CreatedAt = time.Now().UTC()
	return saved, db.conn.Insert(&saved)
}

// GetSavedArticles retrieves a user's favorites, newest first.
func (db SQLDatabase) GetSavedArticles(userID string) ([]models.SavedArticle, error) {
	ptrs := []*models.SavedArticle{}
	_, err := db.conn.Select(&ptrs,
		"SELECT * FROM saved_articles WHERE user_id=$1 ORDER BY created_at DESC", userID)
	saved := []models.SavedArticle{}
	for _, s := range ptrs {
		saved = append(saved, *s)
	}
	return saved, err
}

// RemoveSavedArticle deletes one of the user's own favorites. The owner check
// is part of the DELETE, so users can't remove each other's rows.
func (db *SQLDatabase) RemoveSavedArticle(id string, userID string) error {
	result, err := db.conn.Exec(
		"DELETE FROM saved_articles WHERE id=$1 AND user_id=$2", id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// INVITE DB FUNCTIONS

// PutInvite records an invitation in the pending state.
func (db *SQLDatabase) PutInvite(inviterID string, inviteeEmail string) (models.Invite, error) {
	invite := models.Invite{
		ID:           uuid.NewString(),
		InviterID:    inviterID,
		InviteeEmail: inviteeEmail,
		Status:       models.InvitePending,
		CreatedAt:    time.Now().UTC(),
	}
	return invite, db.conn.Insert(&invite)
}

// GetInvites retrieves the invitations a user has sent, newest first.
func (db SQLDatabase) GetInvites(inviterID string) ([]models.Invite, error) {
	ptrs := []*models.Invite{}
	_, err := db.conn.Select(&ptrs,
		"SELECT * FROM invites WHERE inviter_id=$1 ORDER BY created_at DESC", inviterID)
	invites := []models.Invite{}
	for _, i := range ptrs {
		invites = append(invites, *i)
	}
	return invites, err
}

// CompleteInvites marks every pending invite for an address completed. Called
// when that address redeems a sign-in link.
func (db *SQLDatabase) CompleteInvites(inviteeEmail string) error {
	_, err := db.conn.Exec(
		"UPDATE invites SET status=$1 WHERE invitee_email=$2 AND status=$3",
		string(models.InviteCompleted), inviteeEmail, string(models.InvitePending))
	return err
}

// GetInviteLeaderboard returns invite counts per inviter, highest first.
func (db SQLDatabase) GetInviteLeaderboard() ([]models.LeaderboardRow, error) {
	ptrs := []*models.LeaderboardRow{}
	_, err := db.conn.Select(&ptrs,
		"SELECT inviter_id, COUNT(*) AS count FROM invites GROUP BY inviter_id ORDER BY count DESC, inviter_id")
	rows := []models.LeaderboardRow{}
	for _, r := range ptrs {
		rows = append(rows, *r)
	}
	return rows, err
}

// EMAIL BLACKLIST DB FUNCTIONS

// PutBlacklistedEmail adds a bounce or complaint notification to the email
// blacklist.
func (db SQLDatabase) PutBlacklistedEmail(email string, reason string, timestamp string) error {
	return db.conn.Insert(&EmailBlacklistData{
		Email: email, Timestamp: timestamp, Reason: reason,
	})
}

// IsBlacklistedEmail returns true iff we've blacklisted the passed email
// address for sending.
func (db SQLDatabase) IsBlacklistedEmail(email string) (bool, error) {
	count, err := db.conn.SelectInt(
		"SELECT COUNT(*) FROM blacklisted_emails WHERE email=$1", email)
	return count > 0, err
}

func tryExec(database SQLDatabase, commands []string) error {
	for _, command := range commands {
		if _, err := database.conn.Exec(command); err != nil {
			return fmt.Errorf("command failed: %s\nwith error: %v",
				command, err.Error())
		}
	}
	return nil
}

// ClearTables nukes all the tables. ** Should only be used during testing **
func (db SQLDatabase) ClearTables() error {
	return tryExec(db, []string{
		"DELETE FROM confirmations",
		"DELETE FROM users",
		"DELETE FROM articles",
		"DELETE FROM saved_articles",
		"DELETE FROM invites",
		"DELETE FROM blacklisted_emails",
		"ALTER SEQUENCE blacklisted_emails_id_seq RESTART WITH 1",
	})
}
