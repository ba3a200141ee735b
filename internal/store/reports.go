package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// Compliance reports. The queries pull the persisted facts; the date math
// lives in internal/model so the rules are identical everywhere (calendar
// months and years, never day-count approximations).

// OverdueInspections returns ACTIVE equipment whose last inspection exceeds
// its type's interval as of today. Gear that has never been inspected is
// always overdue and sorts first, then oldest last-inspection first.
func OverdueInspections(ctx context.Context, db *sql.DB, today time.Time) ([]model.OverdueInspection, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT e.equipment_id, e.type_code, t.description, e.name, e.status,
		        t.inspection_interval_months,
		        (SELECT MAX(inspection_date) FROM inspections i WHERE i.equipment_id = e.equipment_id)
		 FROM equipment e
		 JOIN equipment_types t ON t.type_code = e.type_code
		 WHERE e.status = ?`, model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("querying overdue inspections: %w", err)
	}
	defer rows.Close()

	var report []model.OverdueInspection
	for rows.Next() {
		var row model.OverdueInspection
		var name, lastDate sql.NullString
		var interval int
		if err := rows.Scan(&row.EquipmentID, &row.TypeCode, &row.TypeDescription, &name, &row.Status, &interval, &lastDate); err != nil {
			return nil, fmt.Errorf("scanning overdue row: %w", err)
		}
		row.Name = name.String

		var last time.Time
		if lastDate.Valid {
			last, err = model.ParseDate(lastDate.String)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", model.ErrIntegrity, err)
			}
		}
		if !model.InspectionOverdue(last, interval, today) {
			continue
		}

		if last.IsZero() {
			row.NeverInspected = true
		} else {
			due := model.NextInspectionDue(last, interval)
			row.LastInspectionDate = lastDate.String
			row.NextDueDate = model.FormatDate(due)
			row.DaysOverdue = model.DaysBetween(due, today)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying overdue inspections: %w", err)
	}

	sort.SliceStable(report, func(i, j int) bool {
		a, b := report[i], report[j]
		if a.NeverInspected != b.NeverInspected {
			return a.NeverInspected
		}
		return a.LastInspectionDate < b.LastInspectionDate
	})
	return report, nil
}

// RedTagReport returns the destruction countdown for every currently
// red-tagged piece of equipment with a recorded red-tag date, most urgent
// first.
func RedTagReport(ctx context.Context, db *sql.DB, today time.Time) ([]model.RedTagCountdown, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT e.equipment_id, e.type_code, t.description, e.name,
		        (SELECT red_tag_date FROM status_changes sc
		         WHERE sc.equipment_id = e.equipment_id AND sc.new_status = ? AND sc.red_tag_date IS NOT NULL
		         ORDER BY sc.change_date DESC, sc.id DESC LIMIT 1)
		 FROM equipment e
		 JOIN equipment_types t ON t.type_code = e.type_code
		 WHERE e.status = ?`,
		model.StatusRedTagged, model.StatusRedTagged,
	)
	if err != nil {
		return nil, fmt.Errorf("querying red-tag report: %w", err)
	}
	defer rows.Close()

	var report []model.RedTagCountdown
	for rows.Next() {
		var row model.RedTagCountdown
		var name, redTag sql.NullString
		if err := rows.Scan(&row.EquipmentID, &row.TypeCode, &row.TypeDescription, &name, &redTag); err != nil {
			return nil, fmt.Errorf("scanning red-tag row: %w", err)
		}
		if !redTag.Valid {
			// Red-tagged before the audit trail recorded dates; nothing to count
			// down from.
			continue
		}
		row.Name = name.String
		row.RedTagDate = redTag.String

		tagged, err := model.ParseDate(redTag.String)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrIntegrity, err)
		}
		destroyBy := model.RedTagDestroyBy(tagged)
		row.DestroyBy = model.FormatDate(destroyBy)
		row.DaysRemaining = model.DaysBetween(today, destroyBy)
		row.Urgency = model.UrgencyFor(row.DaysRemaining)
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying red-tag report: %w", err)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].DaysRemaining < report[j].DaysRemaining
	})
	return report, nil
}

// ExpiringSoftGoods returns ACTIVE soft-goods equipment whose lifespan runs
// out within the next year, soonest first. Gear without a first-use date has
// no expiry and is skipped; already-expired gear belongs on the overdue
// side, not here.
func ExpiringSoftGoods(ctx context.Context, db *sql.DB, today time.Time) ([]model.ExpiringSoftGood, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT e.equipment_id, e.type_code, t.description, e.name, e.date_put_in_service, t.lifespan_years
		 FROM equipment e
		 JOIN equipment_types t ON t.type_code = e.type_code
		 WHERE e.status = ? AND t.is_soft_goods = 1
		   AND e.date_put_in_service IS NOT NULL AND t.lifespan_years IS NOT NULL`,
		model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("querying expiring soft goods: %w", err)
	}
	defer rows.Close()

	var report []model.ExpiringSoftGood
	for rows.Next() {
		var row model.ExpiringSoftGood
		var name sql.NullString
		if err := rows.Scan(&row.EquipmentID, &row.TypeCode, &row.TypeDescription, &name, &row.DatePutInService, &row.LifespanYears); err != nil {
			return nil, fmt.Errorf("scanning expiry row: %w", err)
		}
		row.Name = name.String

		firstUse, err := model.ParseDate(row.DatePutInService)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrIntegrity, err)
		}
		expiry := model.SoftGoodsExpiry(firstUse, row.LifespanYears)
		if !model.ExpiringSoon(expiry, today) {
			continue
		}
		row.ExpiryDate = model.FormatDate(expiry)
		row.DaysRemaining = model.DaysBetween(today, expiry)
		row.Urgency = model.UrgencyFor(row.DaysRemaining)
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying expiring soft goods: %w", err)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].DaysRemaining < report[j].DaysRemaining
	})
	return report, nil
}

// StatusSummary counts equipment by status.
func StatusSummary(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM equipment GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying status summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		summary[status] = count
	}
	return summary, rows.Err()
}
