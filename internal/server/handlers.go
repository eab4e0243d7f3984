package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/rshade/wishboard/internal/logging"
	"github.com/rshade/wishboard/internal/render"
	"github.com/rshade/wishboard/internal/widget"
)

// Fragments is the JSON form of the widget's mount points.
type Fragments struct {
	Moved       bool         `json:"moved"`
	State       widget.State `json:"state"`
	CurrentPage int          `json:"current_page"`
	TotalPages  int          `json:"total_pages"`
	List        string       `json:"list_html"`
	Pagination  string       `json:"pagination_html"`
}

// Health is the /healthz body.
type Health struct {
	State     widget.State `json:"state"`
	Wishes    int          `json:"wishes"`
	LastError string       `json:"last_error,omitempty"`
}

var errInvalidPage = errors.New("page must be a positive integer")

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	list, controls, err := s.pageFragments(r)
	if errors.Is(err, errInvalidPage) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error().Ctx(r.Context()).Err(err).Msg("rendering visitor page failed")
		respondWithError(w, http.StatusInternalServerError, "rendering failed")
		return
	}

	data := map[string]any{
		"Lang":         s.renderer.Language().String(),
		"Title":        s.renderer.Message(render.MsgTitle),
		"SectionID":    s.widget.SectionID,
		"ContainerID":  s.widget.ContainerID,
		"PaginationID": s.widget.PaginationID,
		// Fragments come from the renderer, which escapes all wish text.
		"List":       template.HTML(list),
		"Pagination": template.HTML(controls),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.page.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error().Ctx(r.Context()).Err(err).Msg("rendering host page failed")
	}
}

// pageFragments returns the list and pagination fragments for the host page.
// Without ?page the shared widget view is served. With it, that page of the
// loaded list is rendered for this request only and the widget stays where
// it is; its controls link back to /?page=n.
func (s *Server) pageFragments(r *http.Request) (string, string, error) {
	ctx := r.Context()
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return s.listHTML(ctx), s.doc.HTML(s.widget.PaginationID), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return "", "", errInvalidPage
	}

	snap := s.ctrl.PageSnapshot(n)
	if snap.LastUpdated.IsZero() {
		// Nothing loaded yet: show the loading or error placeholder.
		return s.listHTML(ctx), s.doc.HTML(s.widget.PaginationID), nil
	}
	list, err := s.renderer.List(snap.Page)
	if err != nil {
		return "", "", err
	}
	controls, err := s.renderer.PaginationWithLinks(snap.Meta, s.widget.MaxPageLinks, s.renderer.QueryLinks("/"))
	if err != nil {
		return "", "", err
	}
	return list, controls, nil
}

// listHTML is the list fragment, or the loading placeholder before the first
// render.
func (s *Server) listHTML(ctx context.Context) string {
	html := s.doc.HTML(s.widget.ContainerID)
	if html != "" {
		return html
	}
	loading, err := s.renderer.Loading()
	if err != nil {
		logging.FromContext(ctx).Error().Ctx(ctx).Err(err).Msg("rendering loading placeholder failed")
	}
	return loading
}

func (s *Server) handleFragment(id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html := s.doc.HTML(id)
		if id == s.widget.ContainerID {
			html = s.listHTML(r.Context())
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(html))
	}
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid page number")
		return
	}
	s.handleNavigate(func(ctx context.Context) bool {
		return s.ctrl.GoTo(ctx, n)
	})(w, r)
}

// handleNavigate runs a navigation action. Browsers are sent back to the
// wishes section; JSON clients get the new fragments.
func (s *Server) handleNavigate(action func(context.Context) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moved := action(r.Context())

		if !wantsJSON(r) {
			http.Redirect(w, r, "/#"+s.widget.SectionID, http.StatusSeeOther)
			return
		}
		respondWithJSON(w, http.StatusOK, Fragments{
			Moved:       moved,
			State:       s.ctrl.State(),
			CurrentPage: s.ctrl.CurrentPage(),
			TotalPages:  s.ctrl.TotalPages(),
			List:        s.listHTML(r.Context()),
			Pagination:  s.doc.HTML(s.widget.PaginationID),
		})
	}
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		respondWithJSON(w, http.StatusOK, s.ctrl.Snapshot())
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		respondWithError(w, http.StatusBadRequest, errInvalidPage.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, s.ctrl.PageSnapshot(n))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := s.ctrl.State()
	body := Health{State: state, Wishes: len(s.ctrl.Wishes())}
	if err := s.ctrl.LastError(); err != nil {
		body.LastError = err.Error()
	}
	code := http.StatusOK
	if state == widget.StateUninitialized {
		code = http.StatusServiceUnavailable
	}
	respondWithJSON(w, code, body)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorBody{Error: message})
}
