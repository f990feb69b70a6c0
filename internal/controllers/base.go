package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/drstein77/shopbot/internal/catalog"
	"github.com/drstein77/shopbot/internal/dialogue"
	"github.com/drstein77/shopbot/internal/middleware"
	"github.com/drstein77/shopbot/internal/models"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Dialogue answers one user input.
type Dialogue interface {
	HandleMessage(userID string, in models.Input) models.Response
}

// Carts exposes read-only cart summaries.
type Carts interface {
	ViewCart(userID string) (models.CartSummary, error)
}

// Catalog lists the products on sale.
type Catalog interface {
	All() []models.Product
}

// Keeper reports whether the catalog database is reachable.
type Keeper interface {
	Ping(context.Context) bool
}

// Log interface for logging
type Log interface {
	Info(string, ...zapcore.Field)
	Error(string, ...zapcore.Field)
}

// BaseController serves the bot over HTTP.
type BaseController struct {
	ctx      context.Context
	dialogue Dialogue
	carts    Carts
	catalog  Catalog
	keeper   Keeper
	log      Log
}

type messageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	Action string `json:"action"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewBaseController creates a controller. keeper may be nil when the
// catalog does not come from a database.
func NewBaseController(ctx context.Context, dialogue Dialogue, carts Carts, catalog Catalog, keeper Keeper, log Log) *BaseController {
	return &BaseController{
		ctx:      ctx,
		dialogue: dialogue,
		carts:    carts,
		catalog:  catalog,
		keeper:   keeper,
		log:      log,
	}
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()

	r.Post("/api/v0/messages", h.postMessage)
	r.Get("/api/v0/carts/{userID}", h.getCart)
	r.Get("/ping", h.ping)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ArchiveTypeMiddleware("catalog.csv"))
		r.Get("/api/v0/products", h.getProducts)
	})

	return r
}

func (h *BaseController) postMessage(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	var in models.Input
	switch {
	case req.Action != "":
		if !dialogue.IsToken(req.Action) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("action %q is not a button token", req.Action)})
			return
		}
		// Malformed and unknown tokens get the same answer as when typed.
		in = models.TextInput(req.Action)
		if action, err := dialogue.ParseToken(req.Action); err == nil {
			in = models.ButtonInput(action)
		}
	case strings.TrimSpace(req.Text) != "":
		in = models.TextInput(req.Text)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text or action is required"})
		return
	}

	writeJSON(w, http.StatusOK, h.dialogue.HandleMessage(userID, in))
}

func (h *BaseController) getCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.carts.ViewCart(chi.URLParam(r, "userID"))
	if err != nil {
		h.log.Error("failed to view cart", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *BaseController) getProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.All()

	if middleware.Archived(r) {
		if err := catalog.WriteCSV(w, products); err != nil {
			h.log.Error("failed to write catalog archive", zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *BaseController) ping(w http.ResponseWriter, r *http.Request) {
	if h.keeper != nil && !h.keeper.Ping(r.Context()) {
		http.Error(w, "catalog database unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
