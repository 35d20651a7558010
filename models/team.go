package models

// Conference of an NFL team
type Conference string

const (
	ConferenceAFC Conference = "AFC"
	ConferenceNFC Conference = "NFC"
)

// Team is static reference data, immutable after seeding.
// ID is the provider's team id so feed payloads map without translation.
type Team struct {
	ID           int        `json:"id" bson:"_id"`
	City         string     `json:"city" bson:"city"`
	Name         string     `json:"name" bson:"name"`
	Abbreviation string     `json:"abbreviation" bson:"abbreviation"`
	Conference   Conference `json:"conference" bson:"conference"`
}

// DisplayName returns the full display name
func (t *Team) DisplayName() string {
	return t.City + " " + t.Name
}
