package controllers

import (
	"net/http"
	"strings"

	"github.com/rajivmenon/tailorbooks-backend/api/responses"
	"github.com/rajivmenon/tailorbooks-backend/internal/customers"
	"github.com/rajivmenon/tailorbooks-backend/internal/efficiency"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
)

// EfficiencyReport aggregates fabric usage over delivered orders. The window
// query parameter defaults to the current month.
func EfficiencyReport(svc efficiency.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := efficiency.ParseWindow(strings.TrimSpace(r.URL.Query().Get("window")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.Report(r.Context(), window)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// CustomerRankings scores customers by lifetime value. The view parameter
// selects the list length: analytics (20) or sales (10).
func CustomerRankings(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := customers.ParseView(strings.TrimSpace(r.URL.Query().Get("view")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rankings, err := svc.Rankings(r.Context(), view)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rankings)
	}
}
