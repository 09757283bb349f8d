package db

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newsportal/news-backend/models"
)

// MemDatabase is an in-memory Database (for testing!). The mutex makes the
// resolve path a single critical section, mirroring the conditional write the
// SQL implementation relies on.
type MemDatabase struct {
	mu            sync.Mutex
	confirmations map[string]models.Confirmation
	users         map[string]models.User // keyed by email
	articles      []models.Article
	saved         []models.SavedArticle
	invites       []models.Invite
	blacklist     map[string]bool
}

// InitMemDatabase returns an empty in-memory database.
func InitMemDatabase() *MemDatabase {
	return &MemDatabase{
		confirmations: make(map[string]models.Confirmation),
		users:         make(map[string]models.User),
		blacklist:     make(map[string]bool),
	}
}

// PutConfirmation creates a pending confirmation request.
func (db *MemDatabase) PutConfirmation(requesterID string, targetEmail string) (models.Confirmation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	confirmation := models.Confirmation{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		TargetEmail: targetEmail,
		Status:      models.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	db.confirmations[confirmation.ID] = confirmation
	return confirmation, nil
}

// GetConfirmation retrieves a confirmation request by id.
func (db *MemDatabase) GetConfirmation(id string) (models.Confirmation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	confirmation, ok := db.confirmations[id]
	if !ok {
		return models.Confirmation{}, models.ErrNotFound
	}
	return confirmation, nil
}

// ResolveConfirmation applies the one-shot pending -> terminal transition.
func (db *MemDatabase) ResolveConfirmation(id string, status models.ConfirmationStatus, respondedAt time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	confirmation, ok := db.confirmations[id]
	if !ok {
		return models.ErrNotFound
	}
	if confirmation.Status != models.StatusPending {
		return models.ErrAlreadyResolved
	}
	confirmation.Status = status
	confirmation.RespondedAt = &respondedAt
	db.confirmations[id] = confirmation
	return nil
}

// GetConfirmations retrieves a requester's confirmations, newest first.
func (db *MemDatabase) GetConfirmations(requesterID string) ([]models.Confirmation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := []models.Confirmation{}
	for _, confirmation := range db.confirmations {
		if confirmation.RequesterID == requesterID {
			result = append(result, confirmation)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// PutUser upserts an account by e-mail address.
func (db *MemDatabase) PutUser(email string) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if user, ok := db.users[email]; ok {
		return user, nil
	}
	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	db.users[email] = user
	return user, nil
}

// GetUserByEmail retrieves an account by e-mail address.
func (db *MemDatabase) GetUserByEmail(email string) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	user, ok := db.users[email]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return user, nil
}

// PutArticle stores a user-submitted news article.
func (db *MemDatabase) PutArticle(article models.Article) (models.Article, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	article.ID = uuid.NewString()
	article.CreatedAt = time.Now().UTC()
	db.articles = append(db.articles, article)
	return article, nil
}

// GetArticles retrieves submitted articles for a country, newest first.
func (db *MemDatabase) GetArticles(countryCode string) ([]models.Article, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := []models.Article{}
	for _, article := range db.articles {
		if article.CountryCode == countryCode {
			result = append(result, article)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// PutSavedArticle pins a search result to a user's favorites.
func (db *MemDatabase) PutSavedArticle(saved models.SavedArticle) (models.SavedArticle, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	saved.ID = uuid.NewString()
	saved.CreatedAt = time.Now().UTC()
	db.saved = append(db.saved, saved)
	return saved, nil
}

// GetSavedArticles retrieves a user's favorites, newest first.
func (db *MemDatabase) GetSavedArticles(userID string) ([]models.SavedArticle, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := []models.SavedArticle{}
	for _, saved := range db.saved {
		if saved.UserID == userID {
			result = append(result, saved)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// RemoveSavedArticle deletes one of the user's own favorites.
func (db *MemDatabase) RemoveSavedArticle(id string, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, saved := range db.saved {
		if saved.ID == id && saved.UserID == userID {
			db.saved = append(db.saved[:i], db.saved[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// PutInvite records an invitation in the pending state.
func (db *MemDatabase) PutInvite(inviterID string, inviteeEmail string) (models.Invite, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	invite := models.Invite{
		ID:           uuid.NewString(),
		InviterID:    inviterID,
		InviteeEmail: inviteeEmail,
		Status:       models.InvitePending,
		CreatedAt:    time.Now().UTC(),
	}
	db.invites = append(db.invites, invite)
	return invite, nil
}

// GetInvites retrieves the invitations a user has sent, newest first.
func (db *MemDatabase) GetInvites(inviterID string) ([]models.Invite, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := []models.Invite{}
	for _, invite := range db.invites {
		if invite.InviterID == inviterID {
			result = append(result, invite)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// CompleteInvites marks every pending invite for an address completed.
func (db *MemDatabase) CompleteInvites(inviteeEmail string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, invite := range db.invites {
		if strings.EqualFold(invite.InviteeEmail, inviteeEmail) && invite.Status == models.InvitePending {
			db.invites[i].Status = models.InviteCompleted
		}
	}
	return nil
}

// GetInviteLeaderboard returns invite counts per inviter, highest first.
func (db *MemDatabase) GetInviteLeaderboard() ([]models.LeaderboardRow, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	counts := make(map[string]int)
	for _, invite := range db.invites {
		counts[invite.InviterID]++
	}
	rows := []models.LeaderboardRow{}
	for inviterID, count := range counts {
		rows = append(rows, models.LeaderboardRow{InviterID: inviterID, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].InviterID < rows[j].InviterID
	})
	return rows, nil
}

// PutBlacklistedEmail adds an address to the e-mail blacklist.
func (db *MemDatabase) PutBlacklistedEmail(email string, reason string, timestamp string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.blacklist[email] = true
	return nil
}

// IsBlacklistedEmail returns true if we've blacklisted an address.
func (db *MemDatabase) IsBlacklistedEmail(email string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.blacklist[email], nil
}

// ClearTables resets the database to empty.
func (db *MemDatabase) ClearTables() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.confirmations = make(map[string]models.Confirmation)
	db.users = make(map[string]models.User)
	db.articles = nil
	db.saved = nil
	db.invites = nil
	db.blacklist = make(map[string]bool)
	return nil
}
