package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/queries"
	querybus "github.com/varangian-core/magical-board/application/queries/bus"
)

// CatalogHandler serves kingdoms, avatars and timeline templates
type CatalogHandler struct {
	responder
	queryBus *querybus.QueryBus
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{responder: responder{logger: logger}, queryBus: queryBus}
}

// ListKingdoms handles GET /kingdoms
func (h *CatalogHandler) ListKingdoms(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListKingdomsQuery{})
}

// GetKingdom handles GET /kingdoms/{kingdomID}
func (h *CatalogHandler) GetKingdom(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetKingdomQuery{KingdomID: chi.URLParam(r, "kingdomID")})
}

// ListAvatars handles GET /avatars
func (h *CatalogHandler) ListAvatars(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListAvatarsQuery{})
}

// ListTemplates handles GET /templates
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListTemplatesQuery{})
}

func (h *CatalogHandler) ask(w http.ResponseWriter, r *http.Request, q querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}
