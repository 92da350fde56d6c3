package handler

import (
	"log/slog"
	"net/http"

	datastar "github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/village-rental/internal/service"
	"github.com/msomdec/village-rental/internal/view"
)

// BannerHandler handles the demo mode banner.
type BannerHandler struct {
	store *service.SessionStore
}

// NewBannerHandler creates a new BannerHandler.
func NewBannerHandler(store *service.SessionStore) *BannerHandler {
	return &BannerHandler{store: store}
}

// HandleDismiss remembers the dismissal for this client and removes the
// banner from the page.
func (h *BannerHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DismissBanner(r.Context(), ClientIDFromContext(r.Context())); err != nil {
		slog.Error("dismiss demo banner", "error", err)
	}

	sse := datastar.NewSSE(w, r)
	sse.RemoveElementByID(view.BannerID)
}
