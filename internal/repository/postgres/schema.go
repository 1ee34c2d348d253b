package postgres

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS addresses (
	id SERIAL PRIMARY KEY,
	user_id INT NOT NULL REFERENCES users(id),
	line1 TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	is_default BOOLEAN NOT NULL DEFAULT FALSE,
	is_placeholder BOOLEAN NOT NULL DEFAULT FALSE,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id SERIAL PRIMARY KEY,
	vendor_id INT NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	quantity_on_hand INT NOT NULL DEFAULT 0 CHECK (quantity_on_hand >= 0),
	sale_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	cost_price NUMERIC(12,2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS quotations (
	id SERIAL PRIMARY KEY,
	customer_id INT NOT NULL REFERENCES users(id),
	rental_start DATE,
	rental_end DATE,
	subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
	discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'DRAFT',
	order_id INT,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quotation_lines (
	id SERIAL PRIMARY KEY,
	quotation_id INT NOT NULL REFERENCES quotations(id),
	product_id INT NOT NULL REFERENCES products(id),
	quantity INT NOT NULL CHECK (quantity > 0),
	line_type TEXT NOT NULL,
	unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	line_total NUMERIC(12,2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS orders (
	id SERIAL PRIMARY KEY,
	order_number TEXT NOT NULL UNIQUE,
	quotation_id INT NOT NULL UNIQUE REFERENCES quotations(id),
	customer_id INT NOT NULL REFERENCES users(id),
	address_id INT NOT NULL REFERENCES addresses(id),
	status TEXT NOT NULL,
	subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
	discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	amount_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
	rental_start DATE,
	rental_end DATE,
	payment_reference TEXT NOT NULL DEFAULT '',
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS order_lines (
	id SERIAL PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id),
	product_id INT NOT NULL REFERENCES products(id),
	quantity INT NOT NULL,
	line_type TEXT NOT NULL,
	unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	line_total NUMERIC(12,2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS reservations (
	id SERIAL PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id),
	product_id INT NOT NULL REFERENCES products(id),
	quantity INT NOT NULL CHECK (quantity > 0),
	from_date DATE NOT NULL,
	to_date DATE NOT NULL,
	status TEXT NOT NULL DEFAULT 'ACTIVE',
	released_at TIMESTAMPTZ,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (from_date <= to_date)
);
CREATE INDEX IF NOT EXISTS idx_reservations_product_active
	ON reservations (product_id, from_date, to_date) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS invoices (
	id SERIAL PRIMARY KEY,
	invoice_number TEXT NOT NULL UNIQUE,
	order_id INT NOT NULL UNIQUE REFERENCES orders(id),
	customer_id INT NOT NULL REFERENCES users(id),
	subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
	discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	amount_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	issued_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS pickups (
	id SERIAL PRIMARY KEY,
	pickup_number TEXT NOT NULL UNIQUE,
	order_id INT NOT NULL UNIQUE REFERENCES orders(id),
	items JSONB NOT NULL DEFAULT '[]',
	status TEXT NOT NULL,
	ready_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS returns (
	id SERIAL PRIMARY KEY,
	order_id INT NOT NULL UNIQUE REFERENCES orders(id),
	return_date DATE NOT NULL,
	late_days INT NOT NULL DEFAULT 0 CHECK (late_days >= 0),
	late_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
	damage_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
	items JSONB NOT NULL DEFAULT '[]',
	notes TEXT NOT NULL DEFAULT '',
	processed_by INT,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS stock_movements (
	id SERIAL PRIMARY KEY,
	product_id INT NOT NULL REFERENCES products(id),
	quantity INT NOT NULL,
	movement_type TEXT NOT NULL,
	reference_id INT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notifications (
	id SERIAL PRIMARY KEY,
	user_id INT NOT NULL REFERENCES users(id),
	type TEXT NOT NULL,
	reference_id INT NOT NULL,
	date_bucket DATE NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	attributes JSONB,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, type, reference_id, date_bucket)
);

CREATE TABLE IF NOT EXISTS document_sequences (
	doc_type TEXT NOT NULL,
	year INT NOT NULL,
	last_value INT NOT NULL DEFAULT 0,
	PRIMARY KEY (doc_type, year)
);
`

// Migrate creates the schema if it is missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
