package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Date-only fields (inspection dates,
// projected job dates, red-tag dates) are TEXT in YYYY-MM-DD form; event
// timestamps are DATETIME with database defaults.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'technician' CHECK (role IN ('admin', 'technician')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment_types (
    type_code                  TEXT PRIMARY KEY,
    description                TEXT NOT NULL,
    is_soft_goods              INTEGER NOT NULL DEFAULT 0,
    lifespan_years             INTEGER,
    inspection_interval_months INTEGER NOT NULL DEFAULT 6,
    is_active                  INTEGER NOT NULL DEFAULT 1,
    sort_order                 INTEGER NOT NULL DEFAULT 0,
    created_at                 DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (is_soft_goods = 0 OR lifespan_years > 0)
);

CREATE TABLE IF NOT EXISTS jobs (
    job_id               TEXT PRIMARY KEY,
    customer_name        TEXT NOT NULL,
    description          TEXT,
    job_title            TEXT,
    location_city        TEXT,
    location_state       TEXT,
    projected_start_date TEXT,
    projected_end_date   TEXT,
    status               TEXT NOT NULL DEFAULT 'PENDING'
        CHECK (status IN ('PENDING', 'BID_SUBMITTED', 'ACTIVE', 'COMPLETED', 'CANCELLED')),
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS job_billing (
    id             INTEGER PRIMARY KEY,
    job_id         TEXT NOT NULL UNIQUE REFERENCES jobs(job_id),
    bid_amount     TEXT,
    actual_cost    TEXT,
    payment_status TEXT NOT NULL DEFAULT 'PENDING' CHECK (payment_status IN ('PENDING', 'PAID', 'OVERDUE')),
    invoice_date   TEXT,
    notes          TEXT
);

CREATE TABLE IF NOT EXISTS equipment (
    equipment_id            TEXT PRIMARY KEY,
    type_code               TEXT NOT NULL REFERENCES equipment_types(type_code),
    name                    TEXT,
    serial_number           TEXT,
    date_added_to_inventory TEXT NOT NULL,
    date_put_in_service     TEXT,
    status                  TEXT NOT NULL DEFAULT 'ACTIVE'
        CHECK (status IN ('ACTIVE', 'RED_TAGGED', 'DESTROYED', 'IN_FIELD', 'WAREHOUSE')),
    job_id                  TEXT REFERENCES jobs(job_id),
    notes                   TEXT,
    photo                   BLOB,
    photo_mime              TEXT,
    created_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_equipment_serial
    ON equipment(serial_number) WHERE serial_number IS NOT NULL AND serial_number != '';

CREATE INDEX IF NOT EXISTS idx_equipment_type ON equipment(type_code);
CREATE INDEX IF NOT EXISTS idx_equipment_status ON equipment(status);
CREATE INDEX IF NOT EXISTS idx_equipment_job ON equipment(job_id) WHERE job_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS inspections (
    id              INTEGER PRIMARY KEY,
    equipment_id    TEXT NOT NULL REFERENCES equipment(equipment_id),
    inspection_date TEXT NOT NULL,
    result          TEXT NOT NULL CHECK (result IN ('PASS', 'FAIL')),
    inspector_name  TEXT NOT NULL,
    notes           TEXT,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_inspections_equipment ON inspections(equipment_id);

CREATE TABLE IF NOT EXISTS status_changes (
    id           INTEGER PRIMARY KEY,
    equipment_id TEXT NOT NULL REFERENCES equipment(equipment_id),
    old_status   TEXT,
    new_status   TEXT NOT NULL,
    change_date  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    red_tag_date TEXT,
    reason       TEXT,
    changed_by   TEXT
);

CREATE INDEX IF NOT EXISTS idx_status_changes_equipment ON status_changes(equipment_id);

CREATE TABLE IF NOT EXISTS invoices (
    id                INTEGER PRIMARY KEY,
    invoice_number    TEXT NOT NULL UNIQUE,
    job_id            TEXT NOT NULL REFERENCES jobs(job_id),
    equipment_id      TEXT REFERENCES equipment(equipment_id),
    invoice_date      TEXT NOT NULL,
    status            TEXT NOT NULL DEFAULT 'DRAFT' CHECK (status IN ('DRAFT', 'SENT', 'PAID')),
    issued_to_name    TEXT,
    issued_to_company TEXT,
    issued_to_address TEXT,
    pay_to_name       TEXT,
    pay_to_company    TEXT,
    pay_to_address    TEXT,
    tax_rate          TEXT NOT NULL DEFAULT '0',
    subtotal          TEXT NOT NULL DEFAULT '0.00',
    tax_amount        TEXT NOT NULL DEFAULT '0.00',
    total_amount      TEXT NOT NULL DEFAULT '0.00',
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_invoices_job ON invoices(job_id);

CREATE TABLE IF NOT EXISTS invoice_line_items (
    id          INTEGER PRIMARY KEY,
    invoice_id  INTEGER NOT NULL REFERENCES invoices(id),
    description TEXT NOT NULL,
    unit_price  TEXT NOT NULL,
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    position    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_line_items_invoice ON invoice_line_items(invoice_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
