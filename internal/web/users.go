package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// UsersPage handles GET /users. The router gates the whole /users tree
// behind RequireWebRole(admin).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	users, _ := store.ListUsers(r.Context(), s.DB)

	s.Templates.Render(w, "users.html", &struct {
		PageData
		Users []model.User
	}{
		PageData: PageData{Title: "Users", User: claims, Token: GetWebToken(r.Context())},
		Users:    users,
	})
}

// UserCreateSubmit handles POST /users.
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	username := r.FormValue("username")
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || role == "" {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if _, err := store.CreateUser(r.Context(), s.DB, username, string(hash), role); err != nil {
		slog.Warn("user creation failed", "error", err, "username", username)
	} else {
		slog.Info("user created", "by", claims.Username, "username", username, "role", role)
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// UserResetPasswordSubmit handles POST /users/{id}/password.
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	newPassword := r.FormValue("new_password")
	if err := model.ValidatePassword(newPassword); err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, id, string(hash)); err != nil {
		slog.Warn("password reset failed", "error", err, "user_id", id)
	} else {
		slog.Info("password reset", "by", claims.Username, "user_id", id)
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// UserUpdateRoleSubmit handles POST /users/{id}/role.
func (s *Server) UserUpdateRoleSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	role := r.FormValue("role")
	if err := store.UpdateUser(r.Context(), s.DB, id, role); err != nil {
		slog.Warn("role update failed", "error", err, "user_id", id)
	} else {
		slog.Info("user role updated", "by", claims.Username, "user_id", id, "role", role)
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}
