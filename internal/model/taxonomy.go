package model

import "time"

// Taxonomy names one of the flat reference tables service options point at.
type Taxonomy string

const (
	TaxonomyLocations         Taxonomy = "locations"
	TaxonomyServiceTypes      Taxonomy = "service_types"
	TaxonomyAssemblyTypes     Taxonomy = "assembly_types"
	TaxonomyInstallationTypes Taxonomy = "installation_types"
	TaxonomyGazeboModels      Taxonomy = "gazebo_models"
)

func Taxonomies() []Taxonomy {
	return []Taxonomy{
		TaxonomyLocations, TaxonomyServiceTypes, TaxonomyAssemblyTypes,
		TaxonomyInstallationTypes, TaxonomyGazeboModels,
	}
}

func (t Taxonomy) Valid() bool {
	for _, v := range Taxonomies() {
		if v == t {
			return true
		}
	}
	return false
}

// Taxon is a single row of a taxonomy table. Names are unique per table.
type Taxon struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description"`
	Photo       string    `json:"photo"`
	CreatedAt   time.Time `json:"created_at"`
}

type ServiceCategory struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" validate:"required,max=255"`
	Description  string    `json:"description"`
	FeatureImage string    `json:"feature_image"`
	CreatedAt    time.Time `json:"created_at"`
}

// DefaultCategories are seeded on first start.
var DefaultCategories = []string{
	"Indoor Furniture Assembly",
	"Outdoor & Patio Assembly",
	"Gazebos & Pergolas",
	"Fitness & Recreation Equipment",
	"Home Installations & Security",
	"Appliances, Plumbing & Maintenance",
	"Child & Baby Safety",
}
