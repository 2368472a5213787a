package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/ward-diet/api/internal/config"
	"github.com/ward-diet/api/internal/customplan"
	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/enum"
	"github.com/ward-diet/api/internal/handler"
	mw "github.com/ward-diet/api/internal/middleware"
	"github.com/ward-diet/api/internal/service"
	"github.com/ward-diet/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Reads are open to any signed-in staff member; writes are gated by role.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, plans *customplan.Registry) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log.Logger))
	r.Use(mw.Recoverer(log.Logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Kitchen screens authenticate with the token query param.
	r.Get("/ws/canteen", ws.ServeRoom(hub, cfg.JWTSecret, ws.RoomCanteen))

	loc, err := cfg.Location()
	if err != nil {
		log.Warn().Err(err).Msg("falling back to local timezone")
		loc = time.Local
	}
	clock := service.LocalClock(loc)

	ledgerService := service.NewLedgerService(pool, func(db database.DBTX) service.LedgerStore {
		return database.New(db)
	}, clock, hub)
	workflowService := service.NewWorkflowService(pool, func(db database.DBTX) service.WorkflowStore {
		return database.New(db)
	}, plans, clock, hub)
	reportService := service.NewReportService(queries, clock)

	foodItemHandler := handler.NewFoodItemHandler(queries)
	packageHandler := handler.NewDietPackageHandler(queries)
	planHandler := handler.NewCustomPlanHandler(plans, queries)
	requestHandler := handler.NewDietRequestHandler(queries, workflowService)
	orderHandler := handler.NewDietOrderHandler(queries, workflowService)
	canteenHandler := handler.NewCanteenHandler(queries, workflowService, hub)
	patientHandler := handler.NewPatientHandler(ledgerService, reportService)
	reportsHandler := handler.NewReportsHandler(reportService)
	staffHandler := handler.NewStaffHandler(queries)

	dieticians := mw.RequireRole(enum.StaffRoleDietician)
	kitchen := mw.RequireRole(enum.StaffRoleCanteen)

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/food-items", func(r chi.Router) {
			foodItemHandler.RegisterReadRoutes(r)
			r.With(dieticians).Group(foodItemHandler.RegisterWriteRoutes)
		})

		r.Route("/diet-packages", func(r chi.Router) {
			packageHandler.RegisterReadRoutes(r)
			r.With(dieticians).Group(packageHandler.RegisterWriteRoutes)
		})

		r.Route("/custom-plans", func(r chi.Router) {
			planHandler.RegisterReadRoutes(r)
			r.With(dieticians).Group(planHandler.RegisterWriteRoutes)
		})

		r.Route("/diet-requests", func(r chi.Router) {
			requestHandler.RegisterRoutes(r)
			r.With(dieticians).Group(requestHandler.RegisterDecisionRoutes)
		})

		r.Route("/diet-orders", func(r chi.Router) {
			orderHandler.RegisterReadRoutes(r)
			r.With(dieticians).Group(orderHandler.RegisterWriteRoutes)
		})

		r.Route("/canteen/orders", func(r chi.Router) {
			canteenHandler.RegisterReadRoutes(r)
			r.With(kitchen).Group(canteenHandler.RegisterWriteRoutes)
		})

		r.Route("/patients", patientHandler.RegisterRoutes)

		reportsHandler.RegisterRoutes(r)

		r.With(mw.RequireRole(enum.StaffRoleAdmin)).Route("/staff", staffHandler.RegisterRoutes)
	})

	log.Info().Msg("router initialized")
	return r
}
