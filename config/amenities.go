package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// AmenityCatalog lists the amenity names the admin form offers when
// building a property's feature set. Common covers the building,
// Private the unit.
type AmenityCatalog struct {
	Common  []string `json:"common"`
	Private []string `json:"private"`
}

var (
	amenities     *AmenityCatalog
	amenitiesLock sync.RWMutex
	amenitiesPath = "config/amenities.json"
)

// defaultAmenities is used when no catalog file is present.
var defaultAmenities = AmenityCatalog{
	Common: []string{
		"Piscina", "Academia", "Salão de festas", "Churrasqueira",
		"Playground", "Portaria 24h", "Quadra esportiva", "Sauna",
	},
	Private: []string{
		"Varanda", "Ar condicionado", "Armários planejados", "Closet",
		"Cozinha americana", "Escritório", "Lareira", "Vista para o mar",
	},
}

// LoadAmenities reads the amenity catalog from file, falling back to the
// built-in defaults when the file is absent.
func LoadAmenities() error {
	amenitiesLock.Lock()
	defer amenitiesLock.Unlock()

	absPath, err := filepath.Abs(amenitiesPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := os.ReadFile(absPath)
	if os.IsNotExist(err) {
		catalog := defaultAmenities
		amenities = &catalog
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read amenities file: %v", err)
	}

	var catalog AmenityCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to parse amenities file: %v", err)
	}

	amenities = &catalog
	return nil
}

// GetAmenities returns the current catalog.
func GetAmenities() AmenityCatalog {
	amenitiesLock.RLock()
	defer amenitiesLock.RUnlock()

	if amenities == nil {
		return defaultAmenities
	}
	return AmenityCatalog{
		Common:  append([]string(nil), amenities.Common...),
		Private: append([]string(nil), amenities.Private...),
	}
}

// SaveAmenities writes the catalog back to file.
func SaveAmenities(catalog AmenityCatalog) error {
	amenitiesLock.Lock()
	defer amenitiesLock.Unlock()

	absPath, err := filepath.Abs(amenitiesPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := json.MarshalIndent(catalog, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal amenities: %v", err)
	}

	if err := os.WriteFile(absPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write amenities file: %v", err)
	}

	amenities = &catalog
	return nil
}
