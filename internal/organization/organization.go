package organization

import (
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
)

type Department struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

type Position struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	IsActive bool   `json:"isActive"`
}

func DepartmentFromDataModel(d *userDatamodel.Department) *Department {
	return &Department{
		ID:       d.ID,
		Code:     d.Code,
		Name:     d.Name,
		IsActive: d.IsActive,
	}
}

func PositionFromDataModel(p *userDatamodel.Position) *Position {
	return &Position{
		ID:       p.ID,
		Code:     p.Code,
		Name:     p.Name,
		Level:    p.Level,
		IsActive: p.IsActive,
	}
}
