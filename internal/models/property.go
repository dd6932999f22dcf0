package models

import "time"

// Features groups the amenity flags of a listing. Common covers the
// building/condominium, Private covers the unit itself.
type Features struct {
	Common  map[string]bool `json:"common"`
	Private map[string]bool `json:"private"`
}

type Multimedia struct {
	VideoURL string `json:"video_url,omitempty"`
	TourURL  string `json:"tour_url,omitempty"`
}

type Property struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	Bairro          string `json:"bairro"`
	Tipo            string `json:"tipo"`
	TransactionType string `json:"transaction_type"`
	Status          string `json:"status"`

	Quartos   int `json:"quartos"`
	Suites    int `json:"suites"`
	Banheiros int `json:"banheiros"`
	Vagas     int `json:"vagas"`
	AreaUtil  int `json:"area_util"`
	AreaTotal int `json:"area_total"`

	CEP             string `json:"cep"`
	Estado          string `json:"estado"`
	Cidade          string `json:"cidade"`
	Endereco        string `json:"endereco"`
	Complemento     string `json:"complemento"`
	MostrarEndereco bool   `json:"mostrar_endereco"`

	RefCode       string `json:"ref_code"`
	Views         int    `json:"views"`
	Featured      bool   `json:"featured"`
	AceitaPermuta bool   `json:"aceita_permuta"`
	AceitaFGTS    bool   `json:"aceita_fgts"`

	// Image mirrors Images[0] and is kept in sync by the write path.
	Image      string     `json:"image"`
	Images     []string   `json:"images"`
	Tags       []string   `json:"tags"`
	Features   Features   `json:"features"`
	Multimedia Multimedia `json:"multimedia"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TransactionTypes and PropertyStatuses are the accepted enum values for
// the corresponding Property fields.
var (
	TransactionTypes = []string{"Venda", "Aluguel", "Temporada", "Leilão"}

	PropertyStatuses = []string{
		"disponivel", "exclusivo", "em_breve",
		"venda_silenciosa", "vendido", "alugado",
	}
)

func ValidTransactionType(t string) bool {
	for _, v := range TransactionTypes {
		if v == t {
			return true
		}
	}
	return false
}

func ValidPropertyStatus(s string) bool {
	for _, v := range PropertyStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// PropertyPage is the enveloped response shape returned when pagination
// parameters are present on the search endpoint.
type PropertyPage struct {
	Data       []Property `json:"data"`
	Pagination Pagination `json:"pagination"`
}
