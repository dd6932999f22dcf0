package database

import (
	"database/sql"
	"errors"
	"fmt"

	"imobiliaria/server/internal/models"
)

// MaxFeatured is the site-wide cap on concurrently highlighted listings.
const MaxFeatured = 4

var ErrFeaturedCap = errors.New("featured cap reached")

// listingOrder is the fixed, non-configurable sort shared by the public
// portfolio and the admin list. The trailing id keeps pages stable when
// every other key ties.
const listingOrder = "ORDER BY featured DESC, views DESC, created_at DESC, id DESC"

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
)

// PageRequest is a 1-based page selection. Out-of-range values are
// clamped, never rejected.
type PageRequest struct {
	Page  int
	Limit int
}

func (r *PageRequest) normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = DefaultPageLimit
	}
	if r.Limit < 1 {
		r.Limit = 1
	}
	if r.Limit > MaxPageLimit {
		r.Limit = MaxPageLimit
	}
}

// CountProperties returns the number of rows matching the filters,
// ignoring pagination.
func (d *Database) CountProperties(f SearchFilters) (int, error) {
	where, args := f.BuildWhere()
	var total int
	err := d.db.QueryRow("SELECT COUNT(*) FROM properties "+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %v", err)
	}
	return total, nil
}

// SearchProperties returns every matching row in listing order. This is
// the legacy no-pagination mode; callers that send pagination parameters
// go through SearchPropertiesPage instead.
func (d *Database) SearchProperties(f SearchFilters) ([]models.Property, error) {
	where, args := f.BuildWhere()
	query := "SELECT " + propertyColumns + " FROM properties " + where + " " + listingOrder

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %v", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// SearchPropertiesPage returns one page of matching rows plus the
// pagination envelope.
func (d *Database) SearchPropertiesPage(f SearchFilters, req PageRequest) (*models.PropertyPage, error) {
	req.normalize()

	total, err := d.CountProperties(f)
	if err != nil {
		return nil, err
	}

	totalPages := (total + req.Limit - 1) / req.Limit
	offset := (req.Page - 1) * req.Limit

	where, args := f.BuildWhere()
	query := "SELECT " + propertyColumns + " FROM properties " + where +
		" " + listingOrder + " LIMIT ? OFFSET ?"
	args = append(args, req.Limit, offset)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties page: %v", err)
	}
	defer rows.Close()

	data, err := collectProperties(rows)
	if err != nil {
		return nil, err
	}

	return &models.PropertyPage{
		Data: data,
		Pagination: models.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasMore:    req.Page < totalPages,
		},
	}, nil
}

func collectProperties(rows *sql.Rows) ([]models.Property, error) {
	properties := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %v", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return properties, nil
}

// GetProperty returns the property with the given id, or nil when absent.
func (d *Database) GetProperty(id int64) (*models.Property, error) {
	row := d.db.QueryRow("SELECT "+propertyColumns+" FROM properties WHERE id = ?", id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %v", err)
	}
	return &p, nil
}

func (d *Database) CreateProperty(p *models.Property) error {
	normalizeProperty(p)

	result, err := d.db.Exec(`
		INSERT INTO properties
		(title, subtitle, description, price, bairro, tipo, transaction_type, status,
		 quartos, suites, banheiros, vagas, area_util, area_total,
		 cep, estado, cidade, endereco, complemento, mostrar_endereco,
		 ref_code, featured, aceita_permuta, aceita_fgts,
		 image, images, tags, features, multimedia)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.Title, p.Subtitle, p.Description, p.Price, p.Bairro, p.Tipo,
		p.TransactionType, p.Status,
		p.Quartos, p.Suites, p.Banheiros, p.Vagas, p.AreaUtil, p.AreaTotal,
		p.CEP, p.Estado, p.Cidade, p.Endereco, p.Complemento,
		boolToInt(p.MostrarEndereco),
		p.RefCode, boolToInt(p.Featured),
		boolToInt(p.AceitaPermuta), boolToInt(p.AceitaFGTS),
		p.Image,
		encodeJSON(p.Images, "[]"), encodeJSON(p.Tags, "[]"),
		encodeJSON(p.Features, "{}"), encodeJSON(p.Multimedia, "{}"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert property: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get property id: %v", err)
	}
	p.ID = id
	return nil
}

// UpdateProperty rewrites every mutable column. The featured flag is not
// touched here; it only changes through ToggleFeatured.
func (d *Database) UpdateProperty(p *models.Property) (bool, error) {
	normalizeProperty(p)

	result, err := d.db.Exec(`
		UPDATE properties SET
			title = ?, subtitle = ?, description = ?, price = ?, bairro = ?, tipo = ?,
			transaction_type = ?, status = ?,
			quartos = ?, suites = ?, banheiros = ?, vagas = ?, area_util = ?, area_total = ?,
			cep = ?, estado = ?, cidade = ?, endereco = ?, complemento = ?, mostrar_endereco = ?,
			ref_code = ?, aceita_permuta = ?, aceita_fgts = ?,
			image = ?, images = ?, tags = ?, features = ?, multimedia = ?,
			geocoding_attempted = 0
		WHERE id = ?
	`,
		p.Title, p.Subtitle, p.Description, p.Price, p.Bairro, p.Tipo,
		p.TransactionType, p.Status,
		p.Quartos, p.Suites, p.Banheiros, p.Vagas, p.AreaUtil, p.AreaTotal,
		p.CEP, p.Estado, p.Cidade, p.Endereco, p.Complemento,
		boolToInt(p.MostrarEndereco),
		p.RefCode, boolToInt(p.AceitaPermuta), boolToInt(p.AceitaFGTS),
		p.Image,
		encodeJSON(p.Images, "[]"), encodeJSON(p.Tags, "[]"),
		encodeJSON(p.Features, "{}"), encodeJSON(p.Multimedia, "{}"),
		p.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update property: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteProperty hard-deletes a listing. Leads keep their denormalized
// property_title, so nothing cascades.
func (d *Database) DeleteProperty(id int64) (bool, error) {
	result, err := d.db.Exec("DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete property: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// IncrementViews bumps the view counter. Rate limiting happens at the
// HTTP layer; this is the unconditional increment.
func (d *Database) IncrementViews(id int64) (bool, error) {
	result, err := d.db.Exec("UPDATE properties SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to increment views: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ToggleFeatured flips the featured flag of a property. Setting the flag
// is guarded by a count subquery inside the UPDATE itself, so two admin
// sessions racing near the cap cannot exceed it. Returns the updated
// property, nil when the id is unknown, or ErrFeaturedCap.
func (d *Database) ToggleFeatured(id int64) (*models.Property, error) {
	var featured int
	err := d.db.QueryRow("SELECT featured FROM properties WHERE id = ?", id).Scan(&featured)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read featured flag: %v", err)
	}

	if featured != 0 {
		_, err = d.db.Exec("UPDATE properties SET featured = 0 WHERE id = ?", id)
		if err != nil {
			return nil, fmt.Errorf("failed to unfeature property: %v", err)
		}
		return d.GetProperty(id)
	}

	result, err := d.db.Exec(`
		UPDATE properties SET featured = 1
		WHERE id = ?
		AND (SELECT COUNT(*) FROM properties WHERE featured = 1) < ?
	`, id, MaxFeatured)
	if err != nil {
		return nil, fmt.Errorf("failed to feature property: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrFeaturedCap
	}
	return d.GetProperty(id)
}

// GetBairroPoints returns the geocoded coordinates grouped per bairro,
// used to draw neighborhood outlines.
func (d *Database) GetBairroPoints() (map[string][][2]float64, error) {
	rows, err := d.db.Query(`
		SELECT bairro, latitude, longitude
		FROM properties
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		AND bairro IS NOT NULL AND bairro != ''
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bairro points: %v", err)
	}
	defer rows.Close()

	points := make(map[string][][2]float64)
	for rows.Next() {
		var bairro string
		var lat, lon float64
		if err := rows.Scan(&bairro, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan bairro point: %v", err)
		}
		points[bairro] = append(points[bairro], [2]float64{lat, lon})
	}
	return points, rows.Err()
}
