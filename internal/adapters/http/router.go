package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tymchak1/flow-roles/internal/application"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok", nil) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ready", nil) })

	r.Route("/v1", func(r chi.Router) {
		// Keeper endpoints are open to any external trigger: the probe is
		// read-only and the sweep re-validates lapse before acting.
		r.Get("/keeper/probe", handler.keeperProbe)
		r.Post("/keeper/sweep", handler.keeperSweep)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/deposits", handler.createDeposit)
			r.Get("/deposits", handler.listDeposits)
			r.Get("/deposits/{index}", handler.getDeposit)
			r.Post("/deposits/{index}/withdraw", handler.withdrawDeposit)
			r.Get("/ledger/total-locked", handler.totalLocked)
			r.Get("/accounts/{account}/summary", handler.accountSummary)
			r.Get("/roles/{account}", handler.accountRoles)
			r.Get("/admin/ownership", handler.getOwnership)
			r.Post("/admin/ownership/transfer", handler.transferOwnership)
		})
	})
	return r
}
