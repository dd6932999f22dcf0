package database

import "fmt"

// AddressGeocoder resolves a street address to coordinates.
type AddressGeocoder interface {
	GeocodeAddress(endereco, bairro, cidade, estado, cep string) (float64, float64, error)
}

// UpdateMissingCoordinates geocodes properties that have an address but
// no coordinates yet. Failed lookups are marked as attempted so they are
// not retried on every pass; an address edit resets the flag.
func (d *Database) UpdateMissingCoordinates(geocoder AddressGeocoder) (int, error) {
	rows, err := d.db.Query(`
		SELECT id, COALESCE(endereco, ''), bairro, COALESCE(cidade, ''),
		       COALESCE(estado, ''), COALESCE(cep, '')
		FROM properties
		WHERE (latitude IS NULL OR longitude IS NULL)
		AND geocoding_attempted = 0
		AND endereco IS NOT NULL AND endereco != ''
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to query properties for geocoding: %v", err)
	}

	type pending struct {
		id                                    int64
		endereco, bairro, cidade, estado, cep string
	}
	var queue []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.endereco, &p.bairro, &p.cidade, &p.estado, &p.cep); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan property for geocoding: %v", err)
		}
		queue = append(queue, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var updated int
	for _, p := range queue {
		lat, lon, err := geocoder.GeocodeAddress(p.endereco, p.bairro, p.cidade, p.estado, p.cep)
		if err != nil {
			_, markErr := d.db.Exec(
				"UPDATE properties SET geocoding_attempted = 1 WHERE id = ?", p.id)
			if markErr != nil {
				return updated, fmt.Errorf("failed to mark geocoding attempt: %v", markErr)
			}
			continue
		}

		_, err = d.db.Exec(`
			UPDATE properties
			SET latitude = ?, longitude = ?, geocoding_attempted = 1
			WHERE id = ?
		`, lat, lon, p.id)
		if err != nil {
			return updated, fmt.Errorf("failed to update coordinates: %v", err)
		}
		updated++
	}

	return updated, nil
}
