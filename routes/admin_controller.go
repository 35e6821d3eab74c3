package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/mattn/go-sqlite3"
	"github.com/mbolis/catering-order/app"
	"github.com/mbolis/catering-order/httpx"
	"github.com/mbolis/catering-order/log"
	"github.com/mbolis/catering-order/model"
)

var reSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// decodeFormRecord reads and checks a form document sent by an editor.
func decodeFormRecord(w http.ResponseWriter, r *http.Request) (model.FormRecord, string, bool) {
	rec := model.FormRecord{}
	err := render.DecodeJSON(r.Body, &rec)
	if err != nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
		return rec, "", false
	}

	rec.Slug = strings.ToLower(strings.TrimSpace(rec.Slug))
	if !reSlug.MatchString(rec.Slug) || rec.Locale == "" {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "form.key", "slug and locale are required")
		return rec, "", false
	}
	if rec.Document == nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "form.document", "document is required")
		return rec, "", false
	}
	err = rec.Document.Validate()
	if err != nil {
		httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "form.validate", "%s", err)
		return rec, "", false
	}

	rec.Document.Slug = rec.Slug
	rec.Document.Locale = rec.Locale
	if rec.Title == "" {
		rec.Title = rec.Document.Title
	}

	document, err := json.Marshal(rec.Document)
	if err != nil {
		httpx.LogInternalError(w, "form.encode", err)
		return rec, "", false
	}
	return rec, string(document), true
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, document, ok := decodeFormRecord(w, r)
		if !ok {
			return
		}

		var formId int
		err := app.QueryRowContext(r.Context(), `
			INSERT INTO form (slug, locale, title, published, document, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id`,
			rec.Slug,
			rec.Locale,
			rec.Title,
			rec.Published,
			document,
			time.Now(),
		).Scan(&formId)
		if isUniqueViolation(err) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "db.insert_form", "form %s/%s already exists", rec.Locale, rec.Slug)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": formId,
		})
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT id, version, slug, locale, title, published, updated_at
			FROM form
			ORDER BY slug, locale`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}
		defer rows.Close()

		forms := []model.FormRecord{}
		for rows.Next() {
			f := model.FormRecord{}
			err = rows.Scan(&f.ID, &f.Version, &f.Slug, &f.Locale, &f.Title, &f.Published, &f.UpdatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_forms.scan", err)
				return
			}

			forms = append(forms, f)
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_forms.rows", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		f := model.FormRecord{ID: formId}
		var document string
		err = app.QueryRowContext(r.Context(), `
			SELECT version, slug, locale, title, published, updated_at, document
			FROM form
			WHERE id = ?`,
			formId,
		).Scan(&f.Version, &f.Slug, &f.Locale, &f.Title, &f.Published, &f.UpdatedAt, &document)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		f.Document, err = model.ParseSchema([]byte(document))
		if err != nil {
			httpx.LogInternalError(w, "db.get_form.parse_document", err)
			return
		}

		render.JSON(w, r, f)
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		rec, document, ok := decodeFormRecord(w, r)
		if !ok {
			return
		}

		res, err := app.ExecContext(r.Context(), `
			UPDATE form
			SET
				slug = ?,
				locale = ?,
				title = ?,
				published = ?,
				document = ?,
				updated_at = ?,
				version = version+1
			WHERE id = ?
				AND version = ?`,
			rec.Slug,
			rec.Locale,
			rec.Title,
			rec.Published,
			document,
			time.Now(),
			formId,
			rec.Version,
		)
		if isUniqueViolation(err) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "db.update_form", "form %s/%s already exists", rec.Locale, rec.Slug)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}
		// optimistic lock
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_form.verify", err)
			return
		}
		if n < 1 {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.update_form.verify.conflict")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		res, err := app.ExecContext(r.Context(), `
			DELETE FROM form WHERE id = ?`,
			formId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_form", formId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// PreviewForm returns a signed link showing the form, drafts included, on
// the public site.
func PreviewForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		var slug, locale string
		err = app.QueryRowContext(r.Context(), `
			SELECT slug, locale FROM form WHERE id = ?`,
			formId,
		).Scan(&slug, &locale)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "preview_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.preview_form", err)
			return
		}

		url, err := app.Previewer.URL(slug, locale)
		if err != nil {
			httpx.LogInternalError(w, "preview.sign", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"url": url,
		})
	}
}
