package api

import (
	"database/sql"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// Config carries the router's knobs beyond the database handle.
type Config struct {
	JWTSecret string

	// AllowRedTagRelease permits manual RED_TAGGED -> ACTIVE transitions.
	AllowRedTagRelease bool

	// Metrics, when non-nil, wraps every request and serves /metrics.
	Metrics *Metrics
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: cfg.JWTSecret}
	usersHandler := &UsersHandler{DB: db}
	typesHandler := &TypesHandler{DB: db}
	equipmentHandler := &EquipmentHandler{DB: db, AllowRedTagRelease: cfg.AllowRedTagRelease}
	inspectionsHandler := &InspectionsHandler{DB: db}
	jobsHandler := &JobsHandler{DB: db}
	invoicesHandler := &InvoicesHandler{DB: db}
	reportsHandler := &ReportsHandler{DB: db}
	importHandler := &ImportHandler{DB: db}

	authMW := AuthMiddleware(cfg.JWTSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireTechnician := RequireRole(model.RoleTechnician)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Equipment types: read (all roles), write (admin).
	mux.Handle("GET /api/types", authMW(http.HandlerFunc(typesHandler.List)))
	mux.Handle("POST /api/types", authMW(requireAdmin(http.HandlerFunc(typesHandler.Create))))
	mux.Handle("PUT /api/types/{code}", authMW(requireAdmin(http.HandlerFunc(typesHandler.Update))))

	// Equipment. Ids embed a slash, so detail routes take two segments.
	mux.Handle("GET /api/equipment", authMW(http.HandlerFunc(equipmentHandler.List)))
	mux.Handle("POST /api/equipment", authMW(requireAdmin(http.HandlerFunc(equipmentHandler.Create))))
	mux.Handle("POST /api/equipment/import", authMW(requireAdmin(http.HandlerFunc(importHandler.Import))))
	mux.Handle("GET /api/equipment/{type}/{num}", authMW(http.HandlerFunc(equipmentHandler.Get)))
	mux.Handle("PUT /api/equipment/{type}/{num}", authMW(requireAdmin(http.HandlerFunc(equipmentHandler.Update))))
	mux.Handle("DELETE /api/equipment/{type}/{num}", authMW(requireAdmin(http.HandlerFunc(equipmentHandler.Delete))))
	mux.Handle("PUT /api/equipment/{type}/{num}/status", authMW(requireAdmin(http.HandlerFunc(equipmentHandler.SetStatus))))
	mux.Handle("GET /api/equipment/{type}/{num}/history", authMW(http.HandlerFunc(equipmentHandler.GetHistory)))
	mux.Handle("GET /api/equipment/{type}/{num}/photo", authMW(http.HandlerFunc(equipmentHandler.GetPhoto)))
	mux.Handle("PUT /api/equipment/{type}/{num}/photo", authMW(requireAdmin(http.HandlerFunc(equipmentHandler.UploadPhoto))))

	// Inspections (technician+).
	mux.Handle("POST /api/equipment/{type}/{num}/inspections", authMW(requireTechnician(http.HandlerFunc(inspectionsHandler.Create))))
	mux.Handle("GET /api/equipment/{type}/{num}/inspections", authMW(http.HandlerFunc(inspectionsHandler.List)))

	// Jobs: read (all roles), create/update (admin), assign/return (technician+).
	mux.Handle("GET /api/jobs", authMW(http.HandlerFunc(jobsHandler.List)))
	mux.Handle("POST /api/jobs", authMW(requireAdmin(http.HandlerFunc(jobsHandler.Create))))
	mux.Handle("GET /api/jobs/{id}", authMW(http.HandlerFunc(jobsHandler.Get)))
	mux.Handle("PUT /api/jobs/{id}", authMW(requireAdmin(http.HandlerFunc(jobsHandler.Update))))
	mux.Handle("PUT /api/jobs/{id}/billing", authMW(requireAdmin(http.HandlerFunc(jobsHandler.UpdateBilling))))
	mux.Handle("POST /api/jobs/{id}/assign", authMW(requireTechnician(http.HandlerFunc(jobsHandler.Assign))))
	mux.Handle("POST /api/jobs/{id}/return", authMW(requireTechnician(http.HandlerFunc(jobsHandler.Return))))

	// Invoices: read (all roles), write (admin).
	mux.Handle("GET /api/invoices", authMW(http.HandlerFunc(invoicesHandler.List)))
	mux.Handle("POST /api/invoices", authMW(requireAdmin(http.HandlerFunc(invoicesHandler.Create))))
	mux.Handle("GET /api/invoices/{id}", authMW(http.HandlerFunc(invoicesHandler.Get)))
	mux.Handle("PUT /api/invoices/{id}", authMW(requireAdmin(http.HandlerFunc(invoicesHandler.Update))))
	mux.Handle("POST /api/invoices/{id}/lines", authMW(requireAdmin(http.HandlerFunc(invoicesHandler.AddLine))))
	mux.Handle("DELETE /api/invoices/{id}/lines/{lineID}", authMW(requireAdmin(http.HandlerFunc(invoicesHandler.DeleteLine))))

	// Reports (all roles).
	mux.Handle("GET /api/reports/overdue-inspections", authMW(http.HandlerFunc(reportsHandler.OverdueInspections)))
	mux.Handle("GET /api/reports/red-tag", authMW(http.HandlerFunc(reportsHandler.RedTag)))
	mux.Handle("GET /api/reports/expiring-soft-goods", authMW(http.HandlerFunc(reportsHandler.ExpiringSoftGoods)))
	mux.Handle("GET /api/reports/summary", authMW(http.HandlerFunc(reportsHandler.Summary)))

	var handler http.Handler = mux
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
		handler = cfg.Metrics.Middleware(handler)
	}
	return handler
}
