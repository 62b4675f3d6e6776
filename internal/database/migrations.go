package database

import "context"

// Users must exist before sessions, categories and bills; categories before
// bills because of the category_id foreign key.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT NOT NULL PRIMARY KEY,
	email TEXT UNIQUE,
	first_name TEXT,
	last_name TEXT,
	profile_image_url TEXT,
	password TEXT,
	auth_provider TEXT NOT NULL DEFAULT 'google',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	sid TEXT NOT NULL PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	sess TEXT NOT NULL,
	expire DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	icon TEXT NOT NULL DEFAULT '📄',
	color TEXT NOT NULL DEFAULT '#6b7280',
	is_default BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	amount TEXT NOT NULL,
	due_date TEXT NOT NULL, -- ISO date string, not a temporal type
	category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
	category TEXT, -- legacy free-text label
	company TEXT,
	notes TEXT,
	status TEXT NOT NULL DEFAULT 'unpaid',
	recurring BOOLEAN NOT NULL DEFAULT 0,
	image_url TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id TEXT NOT NULL PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	level TEXT NOT NULL,
	message TEXT NOT NULL,
	bill_id INTEGER,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_expire ON sessions(expire);
CREATE INDEX IF NOT EXISTS idx_categories_user_id ON categories(user_id);
CREATE INDEX IF NOT EXISTS idx_bills_user_id ON bills(user_id);
CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id, created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR PRIMARY KEY,
	email VARCHAR UNIQUE,
	first_name VARCHAR,
	last_name VARCHAR,
	profile_image_url VARCHAR,
	password VARCHAR,
	auth_provider VARCHAR NOT NULL DEFAULT 'google',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	sid VARCHAR PRIMARY KEY,
	user_id VARCHAR NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	sess TEXT NOT NULL,
	expire TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id BIGSERIAL PRIMARY KEY,
	user_id VARCHAR NOT NULL REFERENCES users(id),
	name VARCHAR NOT NULL,
	icon VARCHAR NOT NULL DEFAULT '📄',
	color VARCHAR NOT NULL DEFAULT '#6b7280',
	is_default BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
	id BIGSERIAL PRIMARY KEY,
	user_id VARCHAR NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	amount NUMERIC(10, 2) NOT NULL,
	due_date TEXT NOT NULL,
	category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
	category TEXT,
	company TEXT,
	notes TEXT,
	status TEXT NOT NULL DEFAULT 'unpaid',
	recurring BOOLEAN NOT NULL DEFAULT FALSE,
	image_url TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id VARCHAR PRIMARY KEY,
	user_id VARCHAR NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	type VARCHAR NOT NULL,
	level VARCHAR NOT NULL,
	message TEXT NOT NULL,
	bill_id BIGINT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_expire ON sessions(expire);
CREATE INDEX IF NOT EXISTS idx_categories_user_id ON categories(user_id);
CREATE INDEX IF NOT EXISTS idx_bills_user_id ON bills(user_id);
CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id, created_at);
`

// Migrate runs the SQL statements to set up the database schema.
func Migrate(ctx context.Context, db *DB) error {
	schema := sqliteSchema
	if db.dialect == Postgres {
		schema = postgresSchema
	}
	_, err := db.DB.ExecContext(ctx, schema)
	return err
}
