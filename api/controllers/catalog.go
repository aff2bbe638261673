package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rajivmenon/tailorbooks-backend/api/responses"
	"github.com/rajivmenon/tailorbooks-backend/internal/stock"
	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
)

type catalogLister interface {
	ListPatterns(ctx context.Context) ([]models.GarmentPattern, error)
	ListFabrics(ctx context.Context) ([]models.FabricItem, error)
	ListAccessories(ctx context.Context) ([]models.Accessory, error)
}

func CatalogPatterns(repo catalogLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patterns, err := repo.ListPatterns(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, patterns)
	}
}

func CatalogFabrics(repo catalogLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fabrics, err := repo.ListFabrics(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fabrics)
	}
}

func CatalogAccessories(repo catalogLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessories, err := repo.ListAccessories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accessories)
	}
}

// FabricClassification returns the stock health bucket for one fabric.
func FabricClassification(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fabricID, err := parseUUIDParam(r, "fabricId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		health, err := svc.FabricClassification(r.Context(), fabricID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, health)
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
