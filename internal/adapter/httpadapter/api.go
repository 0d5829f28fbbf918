package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/geojson"
	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/view"
)

// maxBodyBytes bounds session request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// API serves rendered dashboard views over HTTP.
type API struct {
	renderer *view.Renderer
	sessions *view.SessionStore
	logger   *slog.Logger
}

// NewAPI creates an API backed by renderer and sessions.
func NewAPI(renderer *view.Renderer, sessions *view.SessionStore, logger *slog.Logger) *API {
	return &API{renderer: renderer, sessions: sessions, logger: logger}
}

// Routes registers the API endpoints on r.
func (a *API) Routes(r chi.Router) {
	r.Get("/view", a.handleView)
	r.Post("/sessions", a.handleCreateSession)
	r.Get("/sessions/{id}", a.handleGetSession)
	r.Patch("/sessions/{id}", a.handlePatchSession)
	r.Get("/charts/{mode}.png", a.handleChart)
	r.Get("/layers.geojson", a.handleLayer)
}

type sessionResponse struct {
	ID   string    `json:"id"`
	View view.View `json:"view"`
}

func (a *API) handleView(w http.ResponseWriter, r *http.Request) {
	state, err := stateFromQuery(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	v, err := a.renderer.Render(r.Context(), state)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var state view.State
	if err := decodeBody(r, &state); err != nil {
		a.writeError(w, err)
		return
	}
	s, err := a.sessions.Create(r.Context(), state)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("session created", "session_id", s.ID, "mode", state.Mode)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, View: s.View()})
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, View: s.View()})
}

func (a *API) handlePatchSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	var change view.Change
	if err := decodeBody(r, &change); err != nil {
		a.writeError(w, err)
		return
	}
	v, err := s.Apply(r.Context(), change)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, View: v})
}

func (a *API) handleChart(w http.ResponseWriter, r *http.Request) {
	mode, err := view.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if mode != view.ModeThreat && mode != view.ModeYearly {
		a.writeError(w, fmt.Errorf("%w: mode %s has no chart", view.ErrUnknownMode, mode))
		return
	}
	v, err := a.renderer.Render(r.Context(), view.State{Mode: mode})
	if err != nil {
		a.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.WritePNG(&buf, *v.Chart); err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (a *API) handleLayer(w http.ResponseWriter, r *http.Request) {
	state, err := stateFromQuery(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	state.Mode = view.ModeGeo
	v, err := a.renderer.Render(r.Context(), state)
	if err != nil {
		a.writeError(w, err)
		return
	}
	body, err := geojson.Marshal(*v.Map)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// stateFromQuery reads mode, from, to, map and threat. A threat parameter
// that is present but empty selects no threats.
func stateFromQuery(r *http.Request) (view.State, error) {
	q := r.URL.Query()
	state := view.State{
		Mode:    view.Mode(q.Get("mode")),
		MapType: view.MapType(q.Get("map")),
	}

	from, to := q.Get("from"), q.Get("to")
	if from != "" || to != "" {
		yr := domain.YearRange{From: math.MinInt, To: math.MaxInt}
		var err error
		if from != "" {
			if yr.From, err = strconv.Atoi(from); err != nil {
				return view.State{}, fmt.Errorf("%w: from %q is not a year", errBadRequest, from)
			}
		}
		if to != "" {
			if yr.To, err = strconv.Atoi(to); err != nil {
				return view.State{}, fmt.Errorf("%w: to %q is not a year", errBadRequest, to)
			}
		}
		state.YearRange = &yr
	}

	if values, ok := q["threat"]; ok {
		state.Threats = []string{}
		for _, v := range values {
			for _, th := range strings.Split(v, ",") {
				if th = strings.TrimSpace(th); th != "" {
					state.Threats = append(state.Threats, th)
				}
			}
		}
	}
	return state, nil
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst unchanged.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, view.ErrUnknownMode),
		errors.Is(err, view.ErrUnknownMapType),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, view.ErrSessionNotFound):
		status = http.StatusNotFound
	default:
		a.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
