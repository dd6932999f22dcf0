package database

import (
	"database/sql"
	"encoding/json"

	"imobiliaria/server/internal/models"
)

// propertyColumns is the canonical column list scanned by scanProperty.
// Keep the order in sync between the two.
const propertyColumns = `
	id, title, subtitle, description, price, bairro, tipo,
	COALESCE(transaction_type, 'Venda'), COALESCE(status, 'disponivel'),
	quartos, suites, banheiros, vagas, area_util, area_total,
	cep, estado, cidade, endereco, complemento, mostrar_endereco,
	ref_code, views, featured, aceita_permuta, aceita_fgts,
	image, images, tags, features, multimedia, created_at,
	latitude, longitude`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProperty maps one stored row onto the API representation. JSON text
// fields degrade to empty structures when corrupt or NULL; they never
// surface a parse error to the caller.
func scanProperty(row rowScanner) (models.Property, error) {
	var p models.Property
	var subtitle, description, cep, estado, cidade sql.NullString
	var endereco, complemento, refCode, image sql.NullString
	var imagesText, tagsText, featuresText, multimediaText sql.NullString
	var quartos, suites, banheiros, vagas, areaUtil, areaTotal sql.NullInt64
	var views, mostrarEndereco, featured, aceitaPermuta, aceitaFGTS sql.NullInt64
	var createdAt sql.NullTime
	var latitude, longitude sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.Title, &subtitle, &description, &p.Price, &p.Bairro, &p.Tipo,
		&p.TransactionType, &p.Status,
		&quartos, &suites, &banheiros, &vagas, &areaUtil, &areaTotal,
		&cep, &estado, &cidade, &endereco, &complemento, &mostrarEndereco,
		&refCode, &views, &featured, &aceitaPermuta, &aceitaFGTS,
		&image, &imagesText, &tagsText, &featuresText, &multimediaText, &createdAt,
		&latitude, &longitude,
	)
	if err != nil {
		return p, err
	}

	p.Subtitle = subtitle.String
	p.Description = description.String
	p.CEP = cep.String
	p.Estado = estado.String
	p.Cidade = cidade.String
	p.Endereco = endereco.String
	p.Complemento = complemento.String
	p.RefCode = refCode.String
	p.Image = image.String

	p.Quartos = int(quartos.Int64)
	p.Suites = int(suites.Int64)
	p.Banheiros = int(banheiros.Int64)
	p.Vagas = int(vagas.Int64)
	p.AreaUtil = int(areaUtil.Int64)
	p.AreaTotal = int(areaTotal.Int64)
	p.Views = int(views.Int64)

	p.MostrarEndereco = mostrarEndereco.Int64 != 0
	p.Featured = featured.Int64 != 0
	p.AceitaPermuta = aceitaPermuta.Int64 != 0
	p.AceitaFGTS = aceitaFGTS.Int64 != 0

	p.Images = decodeStringList(imagesText)
	p.Tags = decodeStringList(tagsText)
	p.Features = decodeFeatures(featuresText)
	p.Multimedia = decodeMultimedia(multimediaText)

	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if latitude.Valid {
		lat := latitude.Float64
		p.Latitude = &lat
	}
	if longitude.Valid {
		lon := longitude.Float64
		p.Longitude = &lon
	}

	return p, nil
}

func decodeStringList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s.String), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func decodeFeatures(s sql.NullString) models.Features {
	f := models.Features{
		Common:  map[string]bool{},
		Private: map[string]bool{},
	}
	if !s.Valid || s.String == "" {
		return f
	}
	var parsed models.Features
	if err := json.Unmarshal([]byte(s.String), &parsed); err != nil {
		return f
	}
	if parsed.Common != nil {
		f.Common = parsed.Common
	}
	if parsed.Private != nil {
		f.Private = parsed.Private
	}
	return f
}

func decodeMultimedia(s sql.NullString) models.Multimedia {
	if !s.Valid || s.String == "" {
		return models.Multimedia{}
	}
	var m models.Multimedia
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return models.Multimedia{}
	}
	return m
}

// normalizeProperty applies the write-path defaults before a row is
// stored: enum defaults, non-negative numerics, and the cover-image
// mirror from Images[0].
func normalizeProperty(p *models.Property) {
	if p.TransactionType == "" {
		p.TransactionType = "Venda"
	}
	if p.Status == "" {
		p.Status = "disponivel"
	}

	clamp := func(v *int) {
		if *v < 0 {
			*v = 0
		}
	}
	clamp(&p.Quartos)
	clamp(&p.Suites)
	clamp(&p.Banheiros)
	clamp(&p.Vagas)
	clamp(&p.AreaUtil)
	clamp(&p.AreaTotal)
	clamp(&p.Views)

	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Features.Common == nil {
		p.Features.Common = map[string]bool{}
	}
	if p.Features.Private == nil {
		p.Features.Private = map[string]bool{}
	}

	if len(p.Images) > 0 {
		p.Image = p.Images[0]
	} else if p.Image != "" {
		p.Images = []string{p.Image}
	}
}

// encodeJSON serializes the nested write-path fields. The input types
// cannot fail to marshal, but a corrupt value still degrades to an empty
// structure rather than an error.
func encodeJSON(v interface{}, fallback string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
