package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mbolis/catering-order/app"
	"github.com/mbolis/catering-order/config"
	"github.com/mbolis/catering-order/database"
	"github.com/mbolis/catering-order/form"
	"github.com/mbolis/catering-order/httpx"
	"github.com/mbolis/catering-order/klix"
	"github.com/mbolis/catering-order/log"
	"github.com/mbolis/catering-order/notify"
	"github.com/mbolis/catering-order/routes"
	"github.com/mbolis/catering-order/storage"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	if cfg.CreateEditor != "" {
		createEditor(db, cfg.CreateEditor)
		return
	}

	app := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg.TokenSecret, cfg.TokenTTL),
		Config:       cfg,
		Sessions:     form.NewStore(cfg.SessionTTL),
		Relay:        relay(cfg),
		Previewer:    httpx.NewPreviewer(cfg.TokenSecret, cfg.SiteURL, cfg.PreviewTTL),
	}

	if cfg.KlixSecretKey != "" {
		app.Checkout = klix.NewClient(cfg.KlixURL, cfg.KlixBrandID, cfg.KlixSecretKey, cfg.Currency)
	} else {
		log.Warn("KLIX not configured, checkout disabled")
	}

	if cfg.S3Endpoint != "" {
		uploads, err := storage.NewS3(context.Background(), storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal("main.storage:", err)
		}
		app.Uploads = uploads
	} else {
		log.Warn("S3 not configured, file uploads disabled")
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func relay(cfg config.Config) form.Relay {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP not configured, notifications are only logged")
		return notify.LogRelay{}
	}

	mailer, err := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		log.Fatal("main.mailer:", err)
	}
	return mailer
}

func createEditor(db *sql.DB, credentials string) {
	user, pass, ok := strings.Cut(credentials, ":")
	if !ok || user == "" || pass == "" {
		log.Fatal("main.create_editor: expected user:password")
	}

	err := database.CreateEditor(context.Background(), db, user, pass)
	if err != nil {
		log.Fatal("main.create_editor:", err)
	}
	log.Infof("editor %q saved", user)
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
