package web

import (
	"database/sql"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/model"
	webembed "github.com/highpoint-ops/gearlog/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, allowRedTagRelease bool) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:                 db,
		Templates:          templates,
		JWTSecret:          jwtSecret,
		AllowRedTagRelease: allowRedTagRelease,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)
	adminOnly := RequireWebRole(model.RoleAdmin)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Dashboard)))

	// Equipment ids embed a slash, so detail routes take two segments.
	mux.Handle("GET /equipment", cookieAuth(http.HandlerFunc(s.EquipmentPage)))
	mux.Handle("POST /equipment", cookieAuth(http.HandlerFunc(s.EquipmentCreateSubmit)))
	mux.Handle("GET /equipment/{type}/{num}", cookieAuth(http.HandlerFunc(s.EquipmentDetailPage)))
	mux.Handle("POST /equipment/{type}/{num}", cookieAuth(http.HandlerFunc(s.EquipmentUpdateSubmit)))
	mux.Handle("POST /equipment/{type}/{num}/status", cookieAuth(http.HandlerFunc(s.EquipmentStatusSubmit)))
	mux.Handle("POST /equipment/{type}/{num}/inspections", cookieAuth(http.HandlerFunc(s.InspectionCreateSubmit)))
	mux.Handle("POST /equipment/{type}/{num}/photo", cookieAuth(http.HandlerFunc(s.EquipmentPhotoSubmit)))
	mux.Handle("GET /equipment/{type}/{num}/photo", cookieAuth(http.HandlerFunc(s.EquipmentPhotoGet)))

	mux.Handle("GET /jobs", cookieAuth(http.HandlerFunc(s.JobsPage)))
	mux.Handle("POST /jobs", cookieAuth(http.HandlerFunc(s.JobCreateSubmit)))
	mux.Handle("GET /jobs/{id}", cookieAuth(http.HandlerFunc(s.JobDetailPage)))
	mux.Handle("POST /jobs/{id}", cookieAuth(http.HandlerFunc(s.JobUpdateSubmit)))
	mux.Handle("POST /jobs/{id}/billing", cookieAuth(http.HandlerFunc(s.JobBillingSubmit)))
	mux.Handle("POST /jobs/{id}/assign", cookieAuth(http.HandlerFunc(s.JobAssignSubmit)))
	mux.Handle("POST /jobs/{id}/return", cookieAuth(http.HandlerFunc(s.JobReturnSubmit)))

	mux.Handle("GET /invoices", cookieAuth(http.HandlerFunc(s.InvoicesPage)))
	mux.Handle("POST /invoices", cookieAuth(http.HandlerFunc(s.InvoiceCreateSubmit)))
	mux.Handle("GET /invoices/{id}", cookieAuth(http.HandlerFunc(s.InvoiceDetailPage)))
	mux.Handle("POST /invoices/{id}", cookieAuth(http.HandlerFunc(s.InvoiceUpdateSubmit)))
	mux.Handle("POST /invoices/{id}/lines", cookieAuth(http.HandlerFunc(s.InvoiceLineAddSubmit)))
	mux.Handle("POST /invoices/{id}/lines/{lineID}/delete", cookieAuth(http.HandlerFunc(s.InvoiceLineDeleteSubmit)))

	mux.Handle("GET /reports", cookieAuth(http.HandlerFunc(s.ReportsPage)))

	// User management and invoice defaults are admin pages.
	mux.Handle("GET /users", cookieAuth(adminOnly(http.HandlerFunc(s.UsersPage))))
	mux.Handle("POST /users", cookieAuth(adminOnly(http.HandlerFunc(s.UserCreateSubmit))))
	mux.Handle("POST /users/{id}/password", cookieAuth(adminOnly(http.HandlerFunc(s.UserResetPasswordSubmit))))
	mux.Handle("POST /users/{id}/role", cookieAuth(adminOnly(http.HandlerFunc(s.UserUpdateRoleSubmit))))

	mux.Handle("GET /settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))
	mux.Handle("POST /settings/invoice", cookieAuth(adminOnly(http.HandlerFunc(s.SettingsInvoiceSubmit))))

	return mux, nil
}
