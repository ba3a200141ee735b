package api

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/importer"
)

// ImportHandler handles bulk equipment import from uploaded spreadsheets.
type ImportHandler struct {
	DB *sql.DB
}

// Import handles POST /api/equipment/import: an XLSX upload created row by
// row, with per-row errors in the response.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	// Limit to 10 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "spreadsheet file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	claims := GetClaims(r.Context())
	result, err := importer.ImportEquipment(r.Context(), h.DB, data, claims.Username)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("equipment imported", "user", claims.Username,
		"created", len(result.Created), "errors", len(result.Errors))
	jsonResponse(w, http.StatusOK, result)
}
