package models

import "time"

// Article is a user-submitted news item, surfaced alongside aggregator
// results when searching by country.
type Article struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	AuthorEmail string    `db:"author_email" json:"author_email"`
	Title       string    `db:"title" json:"title"`
	Link        string    `db:"link" json:"link"`
	Description string    `db:"description" json:"description"`
	CountryCode string    `db:"country_code" json:"country_code"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SavedArticle is a search result a user pinned to their favorites. PubDate
// is kept verbatim as reported by the source; only CreatedAt is ours.
type SavedArticle struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Link      string    `db:"link" json:"link"`
	PubDate   string    `db:"pub_date" json:"pub_date"`
	SourceID  string    `db:"source_id" json:"source_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
