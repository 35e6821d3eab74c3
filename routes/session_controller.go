package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/mbolis/catering-order/app"
	"github.com/mbolis/catering-order/form"
	"github.com/mbolis/catering-order/httpx"
	"github.com/mbolis/catering-order/log"
	"github.com/mbolis/catering-order/model"
	"github.com/mbolis/catering-order/storage"
)

const maxUploadMemory = 8 << 20

func getSession(app app.App, w http.ResponseWriter, r *http.Request) (*form.Session, bool) {
	id := chi.URLParam(r, "session")
	session, err := app.Sessions.Get(id)
	if err != nil {
		httpx.LogNotFound(w, "get_session", id)
		return nil, false
	}
	return session, true
}

// answerError maps a failed session mutation to a response.
func answerError(w http.ResponseWriter, r *http.Request, code string, err error) {
	switch {
	case errors.Is(err, form.ErrUnknownElement):
		httpx.LogStatusMsg(w, http.StatusNotFound, log.DebugLevel, code, "%s", err)
	default:
		httpx.LogValidation(w, r, code, err)
	}
}

func GetSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := getSession(app, w, r)
		if !ok {
			return
		}
		render.JSON(w, r, session.View())
	}
}

type answerRequest struct {
	Kind  model.Kind      `json:"kind"`
	ID    model.ID        `json:"id"`
	Value json.RawMessage `json:"value"`
}

func SetAnswer(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := getSession(app, w, r)
		if !ok {
			return
		}

		req := answerRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = session.SetAnswer(req.Kind, req.ID, req.Value)
		if err != nil {
			answerError(w, r, "session.set_answer", err)
			return
		}

		render.JSON(w, r, session.View())
	}
}

func ClearAnswer(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := getSession(app, w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		err := session.ClearAnswer(model.Kind(q.Get("kind")), model.ID(q.Get("id")))
		if err != nil {
			answerError(w, r, "session.clear_answer", err)
			return
		}

		render.JSON(w, r, session.View())
	}
}

func UploadFile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := getSession(app, w, r)
		if !ok {
			return
		}
		if app.Uploads == nil {
			httpx.LogStatus(w, http.StatusServiceUnavailable, log.WarnLevel, "upload.disabled")
			return
		}

		elementID := model.ID(chi.URLParam(r, "element"))
		el, err := session.FileElement(elementID)
		if err != nil {
			answerError(w, r, "upload.element", err)
			return
		}

		if el.MaxSizeMB > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, int64(el.MaxSizeMB*1024*1024)+maxUploadMemory)
		}
		err = r.ParseMultipartForm(maxUploadMemory)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "upload.parse_form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "upload.form_file")
			return
		}
		defer file.Close()

		attachment := model.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		}
		err = form.CheckFile(el, attachment.Name, attachment.ContentType, attachment.Size)
		if err != nil {
			httpx.LogValidation(w, r, "upload.check", err)
			return
		}

		key, err := storage.Key(session.ID, attachment.Name)
		if err != nil {
			httpx.LogInternalError(w, "upload.key", err)
			return
		}
		attachment.URL, err = app.Uploads.Upload(r.Context(), key, attachment.ContentType, file)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadGateway, log.ErrorLevel, "upload.store", "could not store file: %s", err)
			return
		}

		err = session.SetFile(elementID, attachment)
		if err != nil {
			answerError(w, r, "upload.set_file", err)
			return
		}

		render.JSON(w, r, session.View())
	}
}

type dishRequest struct {
	DishID model.ID `json:"dishId"`
	Delta  int      `json:"delta"`
}

func AdjustDish(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := getSession(app, w, r)
		if !ok {
			return
		}

		req := dishRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = session.AdjustDish(model.ID(chi.URLParam(r, "element")), req.DishID, req.Delta)
		if err != nil {
			answerError(w, r, "session.adjust_dish", err)
			return
		}

		render.JSON(w, r, session.View())
	}
}

type navigationResponse struct {
	Moved   bool      `json:"moved"`
	Session form.View `json:"session"`
}

// Navigate applies move to the session. A refused move is not an error: the
// visitor stays where they are.
func Navigate(app app.App, move func(*form.Session) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := getSession(app, w, r)
		if !ok {
			return
		}

		moved := move(session)
		render.JSON(w, r, navigationResponse{moved, session.View()})
	}
}

func GoToStep(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		step, err := strconv.Atoi(chi.URLParam(r, "step"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.step")
			return
		}

		Navigate(app, func(s *form.Session) bool { return s.GoTo(step) })(w, r)
	}
}

func SubmitSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := getSession(app, w, r)
		if !ok {
			return
		}

		err := session.Submit(r.Context(), app.Relay, app.MailRecipient)

		var incomplete *form.IncompleteError
		switch {
		case err == nil:
			log.Infof("session %s submitted", session.ID)
			render.JSON(w, r, session.View())
		case errors.As(err, &incomplete):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"error": err.Error(),
				"step":  incomplete.Step,
			})
		case errors.Is(err, form.ErrNotOnLastStep),
			errors.Is(err, form.ErrAlreadySubmitting),
			errors.Is(err, form.ErrAlreadySubmitted):
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "session.submit", "%s", err)
		case errors.Is(err, form.ErrNoRecipient):
			httpx.LogInternalError(w, "session.submit.recipient", err)
		default:
			httpx.LogStatusMsg(w, http.StatusBadGateway, log.ErrorLevel, "session.submit.relay", "failed to send: %s", err)
		}
	}
}
