package web

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// settingsPageData loads the invoice defaults shown on the settings page.
func (s *Server) settingsPageData(r *http.Request, pd PageData) any {
	payToName, _ := store.GetSetting(r.Context(), s.DB, store.SettingPayToName)
	payToCompany, _ := store.GetSetting(r.Context(), s.DB, store.SettingPayToCompany)
	payToAddress, _ := store.GetSetting(r.Context(), s.DB, store.SettingPayToAddress)
	taxRate, _ := store.GetSetting(r.Context(), s.DB, store.SettingTaxRate)

	return &struct {
		PageData
		PayToName      string
		PayToCompany   string
		PayToAddress   string
		DefaultTaxRate string
	}{
		PageData:       pd,
		PayToName:      payToName,
		PayToCompany:   payToCompany,
		PayToAddress:   payToAddress,
		DefaultTaxRate: taxRate,
	}
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	pd := PageData{Title: "Settings", User: claims, Token: GetWebToken(r.Context())}
	s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	pd := PageData{Title: "Settings", User: claims, Token: GetWebToken(r.Context())}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		pd.Error = "Enter your current and new password."
		s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		pd.Error = err.Error()
		s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		pd.Error = "Could not look up your account."
		s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		pd.Error = "Current password is incorrect."
		s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		pd.Error = "Could not save the new password."
		s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash)); err != nil {
		pd.Error = "Could not save the new password."
		s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
		return
	}

	slog.Info("password changed", "user", claims.Username)
	pd.Success = "Password changed."
	s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
}

// SettingsInvoiceSubmit handles POST /settings/invoice, gated to admins by
// the router: the pay-to block and default tax rate used to pre-fill new
// invoices.
func (s *Server) SettingsInvoiceSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	pd := PageData{Title: "Settings", User: claims, Token: GetWebToken(r.Context())}

	values := map[string]string{
		store.SettingPayToName:    r.FormValue("pay_to_name"),
		store.SettingPayToCompany: r.FormValue("pay_to_company"),
		store.SettingPayToAddress: r.FormValue("pay_to_address"),
		store.SettingTaxRate:      r.FormValue("default_tax_rate"),
	}
	for key, value := range values {
		if err := store.SetSetting(r.Context(), s.DB, key, value); err != nil {
			slog.Error("failed to save setting", "key", key, "error", err)
			pd.Error = "Could not save invoice defaults."
			s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
			return
		}
	}

	slog.Info("invoice defaults updated", "user", claims.Username)
	pd.Success = "Invoice defaults saved."
	s.Templates.Render(w, "settings.html", s.settingsPageData(r, pd))
}
