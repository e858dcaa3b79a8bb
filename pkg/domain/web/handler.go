// Package web exposes the dialogue engine over HTTP.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/dialogue"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/session"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

const maxBodyBytes = 64 << 10

type Engine interface {
	Advance(ctx context.Context, sessionID, utterance string) dialogue.Reply
	SetCustomer(sessionID string, c model.Customer)
	Reset(sessionID string)
}

// History serves recorded turns; optional.
type History interface {
	Load(ctx context.Context, sessionID string) ([]session.Turn, error)
}

type Config struct {
	Engine         Engine
	Logger         zerolog.Logger
	History        History
	MetricsHandler http.Handler
}

type Handler struct {
	engine  Engine
	logger  zerolog.Logger
	history History
}

type customerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type chatRequest struct {
	SessionID    string        `json:"session_id"`
	Message      string        `json:"message"`
	CustomerInfo *customerInfo `json:"customer_info,omitempty"`
}

type serviceDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Duration    int     `json:"duration"`
	Price       float64 `json:"price"`
}

type slotDTO struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	StaffName string    `json:"staff_name,omitempty"`
}

type chatResponse struct {
	SessionID string         `json:"session_id"`
	Message   string         `json:"message"`
	Action    string         `json:"action,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewRouter mounts the chat API plus /healthz and, when given, /metrics.
func NewRouter(cfg Config) http.Handler {
	h := &Handler{engine: cfg.Engine, logger: cfg.Logger, history: cfg.History}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", h.Chat)
		r.Post("/{sessionID}/reset", h.Reset)
		r.Get("/{sessionID}/history", h.History)
	})
	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if ci := req.CustomerInfo; ci != nil {
		h.engine.SetCustomer(req.SessionID, model.Customer{Name: ci.Name, Phone: ci.Phone, Email: ci.Email})
	}

	reply := h.engine.Advance(r.Context(), req.SessionID, req.Message)
	h.logger.Debug().
		Str("session", req.SessionID).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("action", string(reply.Action)).
		Msg("chat turn")

	writeJSON(w, http.StatusOK, toResponse(req.SessionID, reply))
}

func toResponse(sessionID string, reply dialogue.Reply) chatResponse {
	resp := chatResponse{SessionID: sessionID, Message: reply.Text, Action: string(reply.Action)}
	switch reply.Action {
	case dialogue.ActionDisplayServices:
		services := make([]serviceDTO, 0, len(reply.Services))
		for _, s := range reply.Services {
			services = append(services, serviceDTO{ID: s.ID, Name: s.Name, Description: s.Description, Duration: s.DurationMin, Price: s.Price()})
		}
		resp.Data = map[string]any{"services": services}
	case dialogue.ActionDisplaySlots:
		slots := make([]slotDTO, 0, len(reply.Slots))
		for _, s := range reply.Slots {
			slots = append(slots, slotDTO{ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime, StaffName: s.StaffName})
		}
		resp.Data = map[string]any{"available_slots": slots}
	}
	return resp
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	h.engine.Reset(id)
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "reset"})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}
	id := chi.URLParam(r, "sessionID")
	turns, err := h.history.Load(r.Context(), id)
	if err != nil {
		h.logger.Warn().Err(err).Str("session", id).Msg("load history failed")
		writeError(w, http.StatusBadGateway, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "turns": turns})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
