package controllers

import (
	"net/http"

	"github.com/rajivmenon/tailorbooks-backend/api/responses"
	"github.com/rajivmenon/tailorbooks-backend/internal/stock"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
)

// InventoryHealth classifies every fabric and accessory row.
func InventoryHealth(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.InventoryHealth(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
