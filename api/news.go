package api

import (
	"net/http"
	"time"

	"github.com/newsportal/news-backend/models"
)

// Default aggregator query when the caller doesn't supply one.
const defaultNewsQuery = "world news"

// SearchResult is one merged row of a news search: either an aggregator
// headline or a user-submitted article.
type SearchResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	PubDate  string `json:"pubDate"`
	SourceID string `json:"source_id"`
	Source   string `json:"source"` // "user" or "api"
}

// NewsHandler is the handler for /api/news.
//   GET  /api/news?country=<cc>&q=<query>
//        Merged news for a country: user submissions first (newest first),
//        then aggregator headlines.
//   POST /api/news
//        title, country required; link, description optional.
//        Requires a session. Stores a user-submitted article.
func (api API) newsHandler(r *http.Request) response {
	switch r.Method {
	case http.MethodGet:
		return api.searchNews(r)
	case http.MethodPost:
		return api.submitNews(r)
	default:
		return response{StatusCode: http.StatusMethodNotAllowed,
			Message: "/api/news only accepts GET and POST requests"}
	}
}

func (api API) searchNews(r *http.Request) response {
	country, err := getParam("country", r)
	if err != nil {
		return badRequest(err.Error())
	}
	query := r.FormValue("q")
	if query == "" {
		query = defaultNewsQuery
	}
	articles, err := api.Database.GetArticles(country)
	if err != nil {
		return serverError(err.Error())
	}
	headlines, err := api.News.Latest(country, query)
	if err != nil {
		return serverError("Failed to fetch news: %v", err)
	}
	// User submissions come first, mirroring the portal's merge order.
	results := []SearchResult{}
	for _, article := range articles {
		link := article.Link
		if link == "" {
			link = "#"
		}
		sourceID := article.AuthorEmail
		if sourceID == "" {
			sourceID = "User Submission"
		}
		results = append(results, SearchResult{
			Title:    article.Title,
			Link:     link,
			PubDate:  article.CreatedAt.Format(time.RFC3339),
			SourceID: sourceID,
			Source:   "user",
		})
	}
	for _, headline := range headlines {
		results = append(results, SearchResult{
			Title:    headline.Title,
			Link:     headline.Link,
			PubDate:  headline.PubDate,
			SourceID: headline.SourceID,
			Source:   "api",
		})
	}
	if len(results) == 0 {
		return response{StatusCode: http.StatusNotFound,
			Message: "No news found for this country."}
	}
	return response{StatusCode: http.StatusOK, Response: results}
}

func (api API) submitNews(r *http.Request) response {
	identity, ok := api.session(r)
	if !ok {
		return response{StatusCode: http.StatusUnauthorized,
			Message: "Please log in first."}
	}
	title, err := getParam("title", r)
	if err != nil {
		return badRequest(err.Error())
	}
	country, err := getParam("country", r)
	if err != nil {
		return badRequest(err.Error())
	}
	article, err := api.Database.PutArticle(models.Article{
		UserID:      identity.UserID,
		AuthorEmail: identity.Email,
		Title:       title,
		Link:        r.FormValue("link"),
		Description: r.FormValue("description"),
		CountryCode: country,
	})
	if err != nil {
		return serverError(err.Error())
	}
	return response{StatusCode: http.StatusCreated, Response: article}
}

// Saved is the handler for /api/saved.
//   GET    /api/saved          Lists the caller's favorites, newest first.
//   POST   /api/saved          title required; link, pubDate, source_id
//                              optional. Pins a search result.
//   DELETE /api/saved?id=<id>  Removes one of the caller's favorites.
// All methods require a session.
func (api API) saved(r *http.Request) response {
	identity, ok := api.session(r)
	if !ok {
		return response{StatusCode: http.StatusUnauthorized,
			Message: "Please log in to save news."}
	}
	switch r.Method {
	case http.MethodGet:
		saved, err := api.Database.GetSavedArticles(identity.UserID)
		if err != nil {
			return serverError(err.Error())
		}
		return response{StatusCode: http.StatusOK, Response: saved}
	case http.MethodPost:
		title, err := getParam("title", r)
		if err != nil {
			return badRequest(err.Error())
		}
		saved, err := api.Database.PutSavedArticle(models.SavedArticle{
			UserID:   identity.UserID,
			Title:    title,
			Link:     r.FormValue("link"),
			PubDate:  r.FormValue("pubDate"),
			SourceID: r.FormValue("source_id"),
		})
		if err != nil {
			return serverError(err.Error())
		}
		return response{StatusCode: http.StatusCreated, Response: saved}
	case http.MethodDelete:
		id, err := getParam("id", r)
		if err != nil {
			return badRequest(err.Error())
		}
		err = api.Database.RemoveSavedArticle(id, identity.UserID)
		if err == models.ErrNotFound {
			return response{StatusCode: http.StatusNotFound,
				Message: "No such saved article."}
		}
		if err != nil {
			return serverError(err.Error())
		}
		return response{StatusCode: http.StatusOK}
	default:
		return response{StatusCode: http.StatusMethodNotAllowed,
			Message: "/api/saved only accepts GET, POST and DELETE requests"}
	}
}
