package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/validation"
)

const maxBodyBytes = 64 << 10

type Handlers struct {
	Planner *app.PlannerService
	Q       *app.QueryService
	Status  *app.StatusService
}

type problem struct {
	Type   string                 `json:"type"`
	Title  string                 `json:"title"`
	Status int                    `json:"status"`
	Detail string                 `json:"detail,omitempty"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

type previewRequest struct {
	Preferences domain.UserPreferences `json:"preferences"`
	Trip        domain.TripPlan        `json:"trip"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/options", h.options)
	s.mux.Post("/v1/recommendations/preview", h.preview)

	s.mux.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", h.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.deleteSession)
			r.Put("/profile", h.submitProfile)
			r.Put("/trip", h.submitTrip)
			r.Delete("/trip", h.newTrip)
			r.Get("/recommendations", h.recommendations)
			r.Get("/status", h.status)
			r.Post("/saved/{poiId}", h.toggleSaved)
			r.Get("/saved", h.saved)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeProblemBody(w, problem{Type: "about:blank", Title: "Validation Failed",
			Status: http.StatusUnprocessableEntity, Detail: verr.Error(), Errors: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
	case errors.Is(err, domain.ErrProfileRequired), errors.Is(err, domain.ErrTripRequired):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// decode reads a JSON body and writes a 400 problem on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "request body too large or unreadable")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON: "+err.Error())
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	// client already has this version
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) options(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, h.Q.Options())
}

func (h *Handlers) preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.Q.Preview(r.Context(), req.Preferences, req.Trip)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Planner.CreateSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveSession("created")
	w.Header().Set("Location", "/v1/sessions/"+s.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": s.ID})
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Q.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveSession("deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) submitProfile(w http.ResponseWriter, r *http.Request) {
	var p domain.UserPreferences
	if !decode(w, r, &p) {
		return
	}
	s, err := h.Planner.SubmitProfile(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveSession("profile")
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) submitTrip(w http.ResponseWriter, r *http.Request) {
	var t domain.TripPlan
	if !decode(w, r, &t) {
		return
	}
	s, err := h.Planner.SubmitTrip(r.Context(), chi.URLParam(r, "id"), t)
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveSession("trip")
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) newTrip(w http.ResponseWriter, r *http.Request) {
	s, err := h.Planner.NewTrip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveSession("new_trip")
	writeJSON(w, http.StatusOK, s)
}

// recommendations serves the generated view and kicks off a background status
// refresh. The response carries the label from the previous refresh.
func (h *Handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := h.Q.Recommendations(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Status != nil && h.Status.RefreshAsync(id, v.UserName) {
		observability.ObserveSession("status_refresh")
	}
	writeCached(w, r, v)
}

// status returns the stored label; ?refresh=true fetches a fresh one first.
func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.Q.Session(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh && h.Status != nil {
		if s.Preferences == nil {
			writeError(w, domain.ErrProfileRequired)
			return
		}
		if err := h.Status.Refresh(r.Context(), id, s.Preferences.Name); err != nil {
			writeError(w, err)
			return
		}
		observability.ObserveSession("status_refresh")
		if s, err = h.Q.Session(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": s.StatusMessage})
}

func (h *Handlers) toggleSaved(w http.ResponseWriter, r *http.Request) {
	s, err := h.Planner.ToggleSave(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "poiId"))
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveSession("toggle")
	writeJSON(w, http.StatusOK, map[string]any{
		"savedPoiIds": s.SavedPOIIDs,
		"savedCount":  len(s.SavedPOIIDs),
	})
}

func (h *Handlers) saved(w http.ResponseWriter, r *http.Request) {
	v, err := h.Q.Saved(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, v)
}
