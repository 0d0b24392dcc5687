// Package data holds the static datasets the simulation starts from.
package data

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"
)

//go:embed wind.csv
var windCSV []byte

//go:embed plants.csv
var plantsCSV []byte

// WindRecord is one hand-authored wind sample in map coordinates.
type WindRecord struct {
	Region string  `csv:"region"`
	DirX   float64 `csv:"dir_x"`
	DirZ   float64 `csv:"dir_z"`
	PosX   float64 `csv:"pos_x"`
	PosZ   float64 `csv:"pos_z"`
	Speed  float64 `csv:"speed"`
}

// PlantRecord is one power plant site in geographic coordinates.
type PlantRecord struct {
	Name    string  `csv:"name"`
	Country string  `csv:"country"`
	Lon     float64 `csv:"lon"`
	Lat     float64 `csv:"lat"`
	PowerMW float64 `csv:"power_mw"`
}

// Wind decodes the embedded wind dataset.
func Wind() ([]WindRecord, error) {
	return ParseWind(windCSV)
}

// Plants decodes the embedded plant dataset.
func Plants() ([]PlantRecord, error) {
	return ParsePlants(plantsCSV)
}

// ParseWind decodes wind records from CSV with a header row.
func ParseWind(raw []byte) ([]WindRecord, error) {
	var records []WindRecord
	if err := gocsv.UnmarshalBytes(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding wind dataset: %w", err)
	}
	for i, r := range records {
		if r.DirX == 0 && r.DirZ == 0 {
			return nil, fmt.Errorf("wind record %d (%s): zero direction", i, r.Region)
		}
		if r.Speed < 0 {
			return nil, fmt.Errorf("wind record %d (%s): negative speed %g", i, r.Region, r.Speed)
		}
	}
	return records, nil
}

// ParsePlants decodes plant records from CSV with a header row.
func ParsePlants(raw []byte) ([]PlantRecord, error) {
	var records []PlantRecord
	if err := gocsv.Unmarshal(bytes.NewReader(raw), &records); err != nil {
		return nil, fmt.Errorf("decoding plant dataset: %w", err)
	}
	for i, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("plant record %d: missing name", i)
		}
		if r.Lat < -90 || r.Lat > 90 || r.Lon < -180 || r.Lon > 180 {
			return nil, fmt.Errorf("plant %q: coordinates out of range (%g, %g)", r.Name, r.Lon, r.Lat)
		}
	}
	return records, nil
}
