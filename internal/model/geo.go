package model

// Tract is a census tract as described by the gazetteer file. ID is the
// six-digit tract code (the last six digits of the GEOID).
type Tract struct {
	ID         string  `json:"tract_id"`
	GEOID      string  `json:"geoid"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population *int    `json:"population,omitempty"`
}

// Neighborhood is a city community area.
type Neighborhood struct {
	ID   string `json:"area_number"`
	Name string `json:"name"`
}

// Socioeconomic holds the hardship indicators published per community area.
type Socioeconomic struct {
	Community             string  `json:"community"`
	PercentHousingCrowded float64 `json:"percent_housing_crowded"`
	PercentBelowPoverty   float64 `json:"percent_below_poverty"`
	PercentUnemployed     float64 `json:"percent_unemployed"`
	PercentWithoutDiploma float64 `json:"percent_without_diploma"`
	PercentUnder18Over64  float64 `json:"percent_under_18_over_64"`
	PerCapitaIncome       int     `json:"per_capita_income"`
	HardshipIndex         int     `json:"hardship_index"`
}
