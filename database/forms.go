package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mbolis/catering-order/log"
	"github.com/mbolis/catering-order/model"
	"golang.org/x/crypto/bcrypt"
)

// FindForm loads the form document for slug in locale. When the locale has
// no such form the default locale is tried. Drafts are only returned when
// drafts is set.
func FindForm(ctx context.Context, db *sql.DB, slug, locale, defaultLocale string, drafts bool) (*model.Schema, error) {
	schema, err := findForm(ctx, db, slug, locale, drafts)
	if errors.Is(err, ErrNotFound) && locale != defaultLocale {
		log.Debugf("form %q missing in %q, falling back to %q", slug, locale, defaultLocale)
		schema, err = findForm(ctx, db, slug, defaultLocale, drafts)
	}
	return schema, err
}

func findForm(ctx context.Context, db *sql.DB, slug, locale string, drafts bool) (*model.Schema, error) {
	var document string
	err := db.QueryRowContext(ctx, `
		SELECT document
		FROM form
		WHERE slug = ?
			AND locale = ?
			AND (published OR ?)`,
		slug,
		locale,
		drafts,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	schema, err := model.ParseSchema([]byte(document))
	if err != nil {
		return nil, err
	}
	schema.Slug = slug
	schema.Locale = locale
	return schema, nil
}

// CreateEditor stores an editor account able to log into the admin API.
func CreateEditor(ctx context.Context, db *sql.DB, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO editor (username, password_hash) VALUES (?, ?)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash`,
		username,
		hash,
	)
	return err
}
