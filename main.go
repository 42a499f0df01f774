package main

import (
	"log"
	"net/http"

	"churchops/config"
	"churchops/database"
	"churchops/handlers"
	"churchops/middleware"
	"churchops/scheduling"
	"churchops/store"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL, cfg.AdminEmail, cfg.AdminPassword, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	// Services
	schedStore := store.New(db)
	rules := scheduling.NewRules(schedStore, logger)
	assignments := scheduling.NewAssignments(schedStore, cfg.StrictAssignments, logger)

	// Auth and handlers
	auth := middleware.NewAuth(cfg.JWTSecret, db, logger)
	authHandler := handlers.NewAuthHandler(cfg, db, auth, logger)
	plansHandler := handlers.NewPlansHandler(db, logger)
	tenantsHandler := handlers.NewTenantsHandler(db, logger)
	peopleHandler := handlers.NewPeopleHandler(db, logger)
	teamsHandler := handlers.NewTeamsHandler(db, rules, logger)
	eventsHandler := handlers.NewEventsHandler(db, assignments, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Post("/api/auth/login", authHandler.Login)

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Post("/api/auth/change-password", authHandler.ChangePassword)

		// Platform admin routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/api/plans", plansHandler.List)
			r.Post("/api/plans", plansHandler.Create)
			r.Put("/api/plans/{planID}", plansHandler.Update)
			r.Delete("/api/plans/{planID}", plansHandler.Delete)
			r.Get("/api/tenants", tenantsHandler.List)
			r.Post("/api/tenants", tenantsHandler.Create)
		})

		// Tenant-scoped routes
		r.Route("/api/tenants/{tenantID}", func(r chi.Router) {
			// Reads: any person of the tenant
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireTenantUser)
				r.Get("/", tenantsHandler.Get)
				r.Get("/users", tenantsHandler.ListSeats)
				r.Get("/people", peopleHandler.List)
				r.Get("/people/{personID}", peopleHandler.Get)
				r.Get("/people/{personID}/fields", peopleHandler.ListFieldValues)
				r.Get("/people-fields", peopleHandler.ListFields)
				r.Get("/teams", teamsHandler.List)
				r.Get("/teams/{teamID}/skills", teamsHandler.ListSkills)
				r.Get("/teams/{teamID}/members", teamsHandler.ListMembers)
				r.Get("/skill-incompatibilities", teamsHandler.ListIncompatibilities)
				r.Get("/templates", eventsHandler.ListTemplates)
				r.Get("/events", eventsHandler.ListEvents)
				r.Get("/events/{eventID}", eventsHandler.GetEvent)
				r.Get("/events/{eventID}/slots", eventsHandler.ListSlots)
				r.Get("/events/{eventID}/assignments", eventsHandler.ListAssignments)
			})

			// Mutations: tenant owner/admin (or platform admin)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireTenantManager)
				r.Put("/", tenantsHandler.Update)
				r.Delete("/", tenantsHandler.Delete)
				r.Post("/users", tenantsHandler.GrantSeat)
				r.Delete("/users/{personID}", tenantsHandler.RevokeSeat)

				r.Post("/people", peopleHandler.Create)
				r.Put("/people/{personID}", peopleHandler.Update)
				r.Delete("/people/{personID}", peopleHandler.Delete)
				r.Post("/people-fields", peopleHandler.CreateField)
				r.Delete("/people-fields/{fieldID}", peopleHandler.DeleteField)
				r.Put("/people/{personID}/fields/{fieldID}", peopleHandler.SetFieldValue)

				r.Post("/teams", teamsHandler.Create)
				r.Put("/teams/{teamID}", teamsHandler.Update)
				r.Delete("/teams/{teamID}", teamsHandler.Delete)
				r.Post("/teams/{teamID}/skills", teamsHandler.CreateSkill)
				r.Delete("/skills/{skillID}", teamsHandler.DeleteSkill)
				r.Post("/teams/{teamID}/members", teamsHandler.AddMember)
				r.Delete("/members/{memberID}", teamsHandler.RemoveMember)
				r.Post("/members/{memberID}/skills", teamsHandler.GrantMemberSkill)
				r.Delete("/members/{memberID}/skills/{skillID}", teamsHandler.RevokeMemberSkill)

				r.Post("/skill-incompatibilities", teamsHandler.AddIncompatibility)
				r.Delete("/skill-incompatibilities/{skillID1}/{skillID2}", teamsHandler.RemoveIncompatibility)

				r.Post("/templates", eventsHandler.CreateTemplate)
				r.Delete("/templates/{templateID}", eventsHandler.DeleteTemplate)
				r.Post("/templates/{templateID}/slots", eventsHandler.CreateTemplateSlot)
				r.Delete("/template-slots/{slotID}", eventsHandler.DeleteTemplateSlot)

				r.Post("/events", eventsHandler.CreateEvent)
				r.Put("/events/{eventID}", eventsHandler.UpdateEvent)
				r.Delete("/events/{eventID}", eventsHandler.DeleteEvent)
				r.Post("/events/{eventID}/slots", eventsHandler.CreateSlot)
				r.Put("/event-slots/{slotID}", eventsHandler.UpdateSlot)
				r.Delete("/event-slots/{slotID}", eventsHandler.DeleteSlot)

				r.Post("/events/{eventID}/assignments", eventsHandler.CreateAssignment)
				r.Delete("/assignments/{assignmentID}", eventsHandler.DeleteAssignment)
			})
		})
	})

	logger.Info("server starting",
		zap.String("port", cfg.ServerPort),
		zap.Bool("strict_assignments", cfg.StrictAssignments))
	if err := http.ListenAndServe(":"+cfg.ServerPort, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
