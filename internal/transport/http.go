package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otwjunior/coffee-house/internal/catalog"
	"github.com/otwjunior/coffee-house/internal/handler"
	"github.com/otwjunior/coffee-house/internal/identity"
	"github.com/otwjunior/coffee-house/internal/order"
)

func NewRouter(dbPool *pgxpool.Pool) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(identity.Middleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	catalogRepo := catalog.NewRepository(dbPool)
	orderRepo := order.NewRepository(dbPool)
	orderSvc := order.NewService(orderRepo, catalogRepo)

	handler.NewOrderHandler(orderSvc).RegisterRoutes(router)
	handler.NewProductHandler(catalogRepo).RegisterRoutes(router)

	return router
}
