package syncer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dongphonui/sigma-vie-shop/internal/platform/httpx"
)

// Handler exposes explicit refresh and reload endpoints per entity.
type Handler struct {
	logger      *slog.Logger
	reconcilers map[string]EntityReconciler
}

// NewHandler constructs the sync handler.
func NewHandler(logger *slog.Logger, reconcilers ...EntityReconciler) *Handler {
	byEntity := make(map[string]EntityReconciler, len(reconcilers))
	for _, r := range reconcilers {
		byEntity[r.Entity()] = r
	}
	return &Handler{logger: logger, reconcilers: byEntity}
}

// MountRoutes attaches sync routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/status", h.status)
	r.Post("/{entity}/refresh", h.refresh)
	r.Post("/{entity}/reload", h.reload)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	type entityStatus struct {
		Entity   string     `json:"entity"`
		SyncedAt *time.Time `json:"synced_at,omitempty"`
	}
	out := make([]entityStatus, 0, len(h.reconcilers))
	for name, rec := range h.reconcilers {
		stamp, err := rec.SyncedAt(r.Context())
		if err != nil {
			h.logger.Warn("read sync stamp", slog.String("entity", name), slog.Any("error", err))
			continue
		}
		st := entityStatus{Entity: name}
		if !stamp.IsZero() {
			st.SyncedAt = &stamp
		}
		out = append(out, st)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconcilers[chi.URLParam(r, "entity")]
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown entity")
		return
	}
	if err := rec.Reconcile(r.Context()); err != nil {
		h.logger.Error("reconcile", slog.String("entity", rec.Entity()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "reconciled", "entity": rec.Entity()})
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconcilers[chi.URLParam(r, "entity")]
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown entity")
		return
	}
	if err := rec.ForceReload(r.Context()); err != nil {
		h.logger.Error("force reload", slog.String("entity", rec.Entity()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "reloaded", "entity": rec.Entity()})
}
