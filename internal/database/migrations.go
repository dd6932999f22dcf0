package database

import "fmt"

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			subtitle TEXT,
			description TEXT,
			price TEXT NOT NULL,
			bairro TEXT NOT NULL,
			tipo TEXT NOT NULL,
			transaction_type TEXT DEFAULT 'Venda',
			status TEXT DEFAULT 'disponivel',
			quartos INTEGER DEFAULT 0,
			suites INTEGER DEFAULT 0,
			banheiros INTEGER DEFAULT 0,
			vagas INTEGER DEFAULT 0,
			area_util INTEGER DEFAULT 0,
			area_total INTEGER DEFAULT 0,
			cep TEXT,
			estado TEXT,
			cidade TEXT,
			endereco TEXT,
			complemento TEXT,
			mostrar_endereco INTEGER DEFAULT 0,
			ref_code TEXT,
			views INTEGER DEFAULT 0,
			featured INTEGER DEFAULT 0,
			aceita_permuta INTEGER DEFAULT 0,
			aceita_fgts INTEGER DEFAULT 0,
			image TEXT,
			images TEXT,
			tags TEXT,
			features TEXT,
			multimedia TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			property_id INTEGER,
			property_title TEXT,
			type TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create leads table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create settings table: %v", err)
	}

	// Covers the fixed listing order: featured, views, created_at
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_listing_order
		ON properties(featured DESC, views DESC, created_at DESC);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_leads_created_at
		ON leads(created_at DESC);
	`)
	if err != nil {
		return err
	}

	// Coordinate columns were added after the initial schema shipped
	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN latitude REAL;
	`)
	if err != nil && err.Error() != "duplicate column name: latitude" {
		return err
	}

	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN longitude REAL;
	`)
	if err != nil && err.Error() != "duplicate column name: longitude" {
		return err
	}

	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN geocoding_attempted BOOLEAN DEFAULT 0;
	`)
	if err != nil && err.Error() != "duplicate column name: geocoding_attempted" {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`)
	if err != nil {
		return err
	}

	return nil
}
