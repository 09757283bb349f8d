package main

import (
	"log"
	"net/http"
	"os"

	raven "github.com/getsentry/raven-go"
	"github.com/joho/godotenv"

	"github.com/newsportal/news-backend/api"
	"github.com/newsportal/news-backend/auth"
	"github.com/newsportal/news-backend/db"
	"github.com/newsportal/news-backend/email"
	"github.com/newsportal/news-backend/news"
	"github.com/newsportal/news-backend/util"
)

func main() {
	godotenv.Load()
	raven.SetDSN(os.Getenv("SENTRY_DSN"))

	cfg, err := db.LoadEnvironmentVariables()
	if err != nil {
		log.Fatal(err)
	}
	sqldb, err := db.InitSQLDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	emailConfig, err := email.MakeConfigFromEnv(sqldb)
	if err != nil {
		log.Fatal(err)
	}
	authService, err := auth.MakeServiceFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	newsClient, err := news.MakeClientFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	portalAPI := api.API{
		Database: sqldb,
		Emailer:  emailConfig,
		News:     newsClient,
		Auth:     authService,
	}
	mux := http.NewServeMux()
	handler := portalAPI.RegisterHandlers(mux)

	portString, err := util.ValidPort(cfg.Port)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Listening on %s", portString)
	log.Fatal(http.ListenAndServe(portString, handler))
}
