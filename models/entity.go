package models

// EntityKind is the bucket an extracted entity falls into
type EntityKind string

const (
	EntityPerson       EntityKind = "person"
	EntityOrganization EntityKind = "organization"
	EntityPlace        EntityKind = "place"
	EntityLawReference EntityKind = "law_reference"
	EntityDate         EntityKind = "date"
	EntityMoney        EntityKind = "money"
)

// Entity is a named entity found in document text
type Entity struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// EntitySet groups extracted entities by kind. Every kind is present,
// possibly with an empty list.
type EntitySet map[EntityKind][]Entity

// NewEntitySet returns an EntitySet with all buckets initialized
func NewEntitySet() EntitySet {
	return EntitySet{
		EntityPerson:       {},
		EntityOrganization: {},
		EntityPlace:        {},
		EntityLawReference: {},
		EntityDate:         {},
		EntityMoney:        {},
	}
}
