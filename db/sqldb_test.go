package db_test

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/newsportal/news-backend/db"
	"github.com/newsportal/news-backend/models"
)

// These tests pin down the SQL discipline of the resolve path: the pending
// check must live inside the UPDATE itself, and a zero-row result must be
// disambiguated into not-found vs already-resolved.

func mockDatabase(t *testing.T) (*db.SQLDatabase, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	return db.NewSQLDatabase(db.Config{}, conn), mock
}

func confirmationColumns() []string {
	return []string{"id", "requester_id", "target_email", "status", "created_at", "responded_at"}
}

func TestResolveConfirmationConditionalWrite(t *testing.T) {
	database, mock := mockDatabase(t)
	respondedAt := time.Now()
	mock.ExpectExec("UPDATE confirmations SET status=\\$1, responded_at=\\$2 WHERE id=\\$3 AND status=\\$4").
		WithArgs("confirmed", respondedAt, "abc123", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := database.ResolveConfirmation("abc123", models.StatusConfirmed, respondedAt)
	if err != nil {
		t.Errorf("ResolveConfirmation failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestResolveConfirmationAlreadyResolved(t *testing.T) {
	database, mock := mockDatabase(t)
	respondedAt := time.Now()
	mock.ExpectExec("UPDATE confirmations SET status=").
		WithArgs("denied", respondedAt, "abc123", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	earlier := time.Now().Add(-time.Hour)
	mock.ExpectQuery("SELECT \\* FROM confirmations WHERE id=\\$1").
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows(confirmationColumns()).
			AddRow("abc123", "u1", "bob@example.com", "confirmed", earlier.Add(-time.Hour), earlier))

	err := database.ResolveConfirmation("abc123", models.StatusDenied, respondedAt)
	if err != models.ErrAlreadyResolved {
		t.Errorf("Expected ErrAlreadyResolved, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestResolveConfirmationNotFound(t *testing.T) {
	database, mock := mockDatabase(t)
	respondedAt := time.Now()
	mock.ExpectExec("UPDATE confirmations SET status=").
		WithArgs("confirmed", respondedAt, "nonexistent", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT \\* FROM confirmations WHERE id=\\$1").
		WithArgs("nonexistent").
		WillReturnRows(sqlmock.NewRows(confirmationColumns()))

	err := database.ResolveConfirmation("nonexistent", models.StatusConfirmed, respondedAt)
	if err != models.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetConfirmationsOrderedQuery(t *testing.T) {
	database, mock := mockDatabase(t)
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM confirmations WHERE requester_id=\\$1 ORDER BY created_at DESC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(confirmationColumns()).
			AddRow("id2", "u1", "two@example.com", "pending", now, nil).
			AddRow("id1", "u1", "one@example.com", "confirmed", now.Add(-time.Hour), now))

	confirmations, err := database.GetConfirmations("u1")
	if err != nil {
		t.Fatalf("GetConfirmations failed: %v", err)
	}
	if len(confirmations) != 2 || confirmations[0].ID != "id2" {
		t.Errorf("Expected newest-first rows, got %v", confirmations)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInviteLeaderboardQuery(t *testing.T) {
	database, mock := mockDatabase(t)
	mock.ExpectQuery("SELECT inviter_id, COUNT\\(\\*\\) AS count FROM invites GROUP BY inviter_id").
		WillReturnRows(sqlmock.NewRows([]string{"inviter_id", "count"}).
			AddRow("alice", 3).
			AddRow("bob", 1))

	board, err := database.GetInviteLeaderboard()
	if err != nil {
		t.Fatalf("GetInviteLeaderboard failed: %v", err)
	}
	if len(board) != 2 || board[0].InviterID != "alice" || board[0].Count != 3 {
		t.Errorf("Unexpected leaderboard: %v", board)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRemoveSavedArticleOwnerScoped(t *testing.T) {
	database, mock := mockDatabase(t)
	mock.ExpectExec("DELETE FROM saved_articles WHERE id=\\$1 AND user_id=\\$2").
		WithArgs("article1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := database.RemoveSavedArticle("article1", "u2")
	if err != models.ErrNotFound {
		t.Errorf("Expected ErrNotFound for non-owner delete, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
