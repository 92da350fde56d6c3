package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	datastar "github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/guard"
	"github.com/msomdec/village-rental/internal/service"
	"github.com/msomdec/village-rental/internal/view"
)

// EquipmentHandler handles equipment browsing.
type EquipmentHandler struct {
	equipment *service.EquipmentService
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(equipment *service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment}
}

// HandleList renders the equipment page filtered by the q parameter.
func (h *EquipmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	c := chrome(r, "Browse equipment")

	items, err := h.equipment.Search(r.Context(), ClientIDFromContext(r.Context()), query)
	if err != nil {
		if isSessionLost(err) {
			redirect(w, r, guard.LoginPath)
			return
		}
		slog.Error("list equipment", "error", err)
		c.Flash = "Could not load equipment. Please try again."
	}
	renderPage(w, r, http.StatusOK, view.EquipmentPage(c, query, items))
}

// HandleSearch patches the result list for the query signal.
func (h *EquipmentHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var signals struct {
		Query string `json:"query"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	items, err := h.equipment.Search(r.Context(), ClientIDFromContext(r.Context()), signals.Query)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		if isSessionLost(err) {
			sse.Redirect(guard.LoginPath)
			return
		}
		slog.Error("search equipment", "error", err)
		sse.PatchElementTempl(
			view.Toast("Search failed. Please try again."),
			datastar.WithSelectorID(view.ToastID),
			datastar.WithModeInner(),
		)
		return
	}
	sse.PatchElementTempl(view.EquipmentResults(items))
}

// HandleDetail renders one item. Unknown ids go back to the list.
func (h *EquipmentHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/equipment", http.StatusSeeOther)
		return
	}

	item, err := h.equipment.Find(r.Context(), ClientIDFromContext(r.Context()), id)
	switch {
	case err == nil:
		renderPage(w, r, http.StatusOK, view.EquipmentDetailPage(chrome(r, item.Name), item))
	case isSessionLost(err):
		redirect(w, r, guard.LoginPath)
	case errors.Is(err, domain.ErrNotFound):
		http.Redirect(w, r, "/equipment", http.StatusSeeOther)
	default:
		slog.Error("get equipment", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func isSessionLost(err error) bool {
	return errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrUnauthorized)
}
