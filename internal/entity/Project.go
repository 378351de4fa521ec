package entity

import "time"

type ProjectCategory string

const (
	CategoryCulture     ProjectCategory = "Cultura"
	CategoryEducation   ProjectCategory = "Educação"
	CategorySport       ProjectCategory = "Esporte"
	CategoryEnvironment ProjectCategory = "Meio Ambiente"
	CategoryHealth      ProjectCategory = "Saúde"
	CategoryTechnology  ProjectCategory = "Tecnologia"
	CategoryOther       ProjectCategory = "Outros"
)

var ProjectCategories = []ProjectCategory{
	CategoryCulture,
	CategoryEducation,
	CategorySport,
	CategoryEnvironment,
	CategoryHealth,
	CategoryTechnology,
	CategoryOther,
}

func (c ProjectCategory) Valid() bool {
	for _, known := range ProjectCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Project struct {
	ID             string          `json:"id"`
	CallID         string          `json:"call_id"`
	Name           string          `json:"name"`
	Category       ProjectCategory `json:"category"`
	Description    string          `json:"description"`
	Location       string          `json:"location"`
	Beneficiaries  string          `json:"beneficiaries"`
	RequestedCents int64           `json:"requested_cents"`
	Slug           string          `json:"slug"`
	SubmitterID    string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
