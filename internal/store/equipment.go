package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// createRetries bounds the retry loop around id generation. Two concurrent
// creators can compute the same next id; the loser's INSERT fails on the
// primary key and recomputes inside a fresh transaction.
const createRetries = 3

const equipmentColumns = `e.equipment_id, e.type_code, e.name, e.serial_number,
	e.date_added_to_inventory, e.date_put_in_service, e.status, e.job_id,
	e.notes, e.photo_mime, t.description, e.created_at, e.updated_at`

// nextEquipmentSeq finds the highest numeric suffix among existing ids of a
// type and returns the next one. Suffixes are compared as integers, so R/9
// orders before R/10. An unparseable suffix is a data-integrity failure, not
// something to silently skip.
func nextEquipmentSeq(ctx context.Context, tx *sql.Tx, typeCode string) (int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT equipment_id FROM equipment WHERE equipment_id LIKE ? || '/%'`, typeCode,
	)
	if err != nil {
		return 0, fmt.Errorf("scanning equipment ids for %s: %w", typeCode, err)
	}
	defer rows.Close()

	maxSeq := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scanning equipment id: %w", err)
		}
		_, seq, err := model.ParseEquipmentID(id)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", model.ErrIntegrity, err)
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("scanning equipment ids for %s: %w", typeCode, err)
	}
	return maxSeq + 1, nil
}

// validateEquipmentInput collects input problems for a new piece of
// equipment before anything is written.
func validateEquipmentInput(e *model.Equipment) error {
	var problems []string
	if !model.ValidTypeCode(e.TypeCode) {
		problems = append(problems, "type code must be 1-4 uppercase letters")
	}
	if len(e.SerialNumber) > model.MaxSerialNumberLen {
		problems = append(problems, fmt.Sprintf("serial number longer than %d characters", model.MaxSerialNumberLen))
	}
	if e.DateAddedToInventory != "" {
		if _, err := model.ParseDate(e.DateAddedToInventory); err != nil {
			problems = append(problems, "date added must be YYYY-MM-DD")
		}
	}
	if e.DatePutInService != "" {
		if _, err := model.ParseDate(e.DatePutInService); err != nil {
			problems = append(problems, "date put in service must be YYYY-MM-DD")
		}
	}
	if len(problems) > 0 {
		return model.NewValidationError(problems...)
	}
	return nil
}

// CreateEquipment creates a piece of equipment in ACTIVE status, assigns the
// next sequential id for its type, and writes the initial status-change row,
// all in one transaction. The find-max + insert sequence retries on id
// collision so concurrent creators never both keep the same id.
func CreateEquipment(ctx context.Context, db *sql.DB, e *model.Equipment, changedBy string) (*model.Equipment, error) {
	if err := validateEquipmentInput(e); err != nil {
		return nil, err
	}

	t, err := GetEquipmentType(ctx, db, e.TypeCode)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("equipment type %s: %w", e.TypeCode, model.ErrNotFound)
	}
	if !t.IsActive {
		return nil, model.NewValidationError(fmt.Sprintf("equipment type %s is deactivated", e.TypeCode))
	}

	dateAdded := e.DateAddedToInventory
	if dateAdded == "" {
		dateAdded = model.FormatDate(time.Now())
	}

	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := createEquipmentOnce(ctx, db, e, dateAdded, changedBy)
		if err == nil {
			return GetEquipment(ctx, db, id)
		}
		if !isConstraint(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, wrapDB("creating equipment", lastErr)
}

func createEquipmentOnce(ctx context.Context, db *sql.DB, e *model.Equipment, dateAdded, changedBy string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextEquipmentSeq(ctx, tx, e.TypeCode)
	if err != nil {
		return "", err
	}
	id := model.FormatEquipmentID(e.TypeCode, seq)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO equipment (equipment_id, type_code, name, serial_number, date_added_to_inventory, date_put_in_service, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.TypeCode, nullIfEmpty(e.Name), nullIfEmpty(e.SerialNumber),
		dateAdded, nullIfEmpty(e.DatePutInService), model.StatusActive, nullIfEmpty(e.Notes),
	)
	if err != nil {
		return "", err
	}

	// Initial audit row: old status NULL, new status ACTIVE.
	if err := insertStatusChange(ctx, tx, id, "", model.StatusActive, "", "added to inventory", changedBy); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing equipment: %w", err)
	}
	return id, nil
}

// BatchCreateEquipment creates between 2 and 50 pieces of equipment of the
// same type. Items are applied independently: one bad serial rejects that
// item only, and earlier successes stay committed.
func BatchCreateEquipment(ctx context.Context, db *sql.DB, base *model.Equipment, serials []string, quantity int, changedBy string) (*model.BatchResult, error) {
	if quantity < model.BatchMinQuantity || quantity > model.BatchMaxQuantity {
		return nil, model.NewValidationError(fmt.Sprintf("batch quantity must be between %d and %d", model.BatchMinQuantity, model.BatchMaxQuantity))
	}
	if len(serials) > 0 && len(serials) != quantity {
		return nil, model.NewValidationError("serial numbers must match the batch quantity")
	}

	result := &model.BatchResult{}
	for i := 0; i < quantity; i++ {
		item := *base
		if len(serials) > 0 {
			item.SerialNumber = serials[i]
		}
		created, err := CreateEquipment(ctx, db, &item, changedBy)
		if err != nil {
			result.Failures = append(result.Failures, model.BatchFailure{
				Position: i + 1,
				Reason:   err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, created.EquipmentID)
	}
	return result, nil
}

// GetEquipment returns a piece of equipment by id, or nil if none exists.
func GetEquipment(ctx context.Context, db *sql.DB, id string) (*model.Equipment, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+equipmentColumns+`
		 FROM equipment e JOIN equipment_types t ON t.type_code = e.type_code
		 WHERE e.equipment_id = ?`, id,
	)
	e, err := scanEquipment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment: %w", err)
	}
	return e, nil
}

// EquipmentFilter narrows ListEquipment. Zero values mean no filtering.
type EquipmentFilter struct {
	Status   string
	TypeCode string
	JobID    string
	// Search matches id, name, serial number, or type description,
	// case-insensitively.
	Search string
}

// ListEquipment returns equipment matching the filter, ordered by type and
// numeric id suffix.
func ListEquipment(ctx context.Context, db *sql.DB, f EquipmentFilter) ([]model.Equipment, error) {
	query := `SELECT ` + equipmentColumns + `
	          FROM equipment e JOIN equipment_types t ON t.type_code = e.type_code
	          WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND e.status = ?`
		args = append(args, f.Status)
	}
	if f.TypeCode != "" {
		query += ` AND e.type_code = ?`
		args = append(args, f.TypeCode)
	}
	if f.JobID != "" {
		query += ` AND e.job_id = ?`
		args = append(args, f.JobID)
	}
	if f.Search != "" {
		query += ` AND (e.equipment_id LIKE ? OR e.name LIKE ? OR e.serial_number LIKE ? OR t.description LIKE ?)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	// Integer suffix ordering keeps R/9 before R/10.
	query += ` ORDER BY e.type_code, CAST(substr(e.equipment_id, instr(e.equipment_id, '/') + 1) AS INTEGER)`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}
	defer rows.Close()

	var equipment []model.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		equipment = append(equipment, *e)
	}
	return equipment, rows.Err()
}

// UpdateEquipment updates the mutable metadata of a piece of equipment. The
// id, type, and status are not touched here: status moves only through the
// transition paths.
func UpdateEquipment(ctx context.Context, db *sql.DB, id, name, serialNumber, datePutInService, notes string) error {
	var problems []string
	if len(serialNumber) > model.MaxSerialNumberLen {
		problems = append(problems, fmt.Sprintf("serial number longer than %d characters", model.MaxSerialNumberLen))
	}
	if datePutInService != "" {
		if _, err := model.ParseDate(datePutInService); err != nil {
			problems = append(problems, "date put in service must be YYYY-MM-DD")
		}
	}
	if len(problems) > 0 {
		return model.NewValidationError(problems...)
	}

	res, err := db.ExecContext(ctx,
		`UPDATE equipment
		 SET name = ?, serial_number = ?, date_put_in_service = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE equipment_id = ?`,
		nullIfEmpty(name), nullIfEmpty(serialNumber), nullIfEmpty(datePutInService), nullIfEmpty(notes), id,
	)
	if err != nil {
		return wrapDB("updating equipment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating equipment %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// DeleteEquipment removes a piece of equipment and its status history.
// Equipment with any inspection record cannot be deleted: inspections are
// the permanent safety record, so such gear is moved to DESTROYED instead.
func DeleteEquipment(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inspections WHERE equipment_id = ?`, id,
	).Scan(&count); err != nil {
		return fmt.Errorf("counting inspections: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("equipment %s has %d inspection records: %w", id, count, model.ErrIntegrity)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM status_changes WHERE equipment_id = ?`, id); err != nil {
		return fmt.Errorf("deleting status history: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM equipment WHERE equipment_id = ?`, id)
	if err != nil {
		return wrapDB("deleting equipment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting equipment %s: %w", id, model.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// SetEquipmentPhoto stores a processed photo for a piece of equipment.
func SetEquipmentPhoto(ctx context.Context, db *sql.DB, id string, photo []byte, mime string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE equipment SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE equipment_id = ?`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting equipment photo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("setting photo for %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// GetEquipmentPhoto returns the photo bytes and MIME type, or nil if the
// equipment has no photo.
func GetEquipmentPhoto(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM equipment WHERE equipment_id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting equipment photo: %w", err)
	}
	return photo, mime.String, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEquipment(row rowScanner) (*model.Equipment, error) {
	e := &model.Equipment{}
	var name, serial, putInService, jobID, notes, photoMime sql.NullString
	err := row.Scan(&e.EquipmentID, &e.TypeCode, &name, &serial,
		&e.DateAddedToInventory, &putInService, &e.Status, &jobID,
		&notes, &photoMime, &e.TypeDescription, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Name = name.String
	e.SerialNumber = serial.String
	e.DatePutInService = putInService.String
	e.JobID = jobID.String
	e.Notes = notes.String
	e.PhotoMime = photoMime.String
	return e, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
