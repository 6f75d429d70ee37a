package postgres

import (
	"context"

	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-management/internal/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.RepositoryAPI {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) ListActiveDepartments(ctx context.Context) ([]*userDatamodel.Department, error) {
	var departments []*userDatamodel.Department
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("code ASC").Find(&departments).Error
	return departments, err
}

func (r *OrganizationRepository) ListActivePositions(ctx context.Context) ([]*userDatamodel.Position, error) {
	var positions []*userDatamodel.Position
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("level DESC, code ASC").Find(&positions).Error
	return positions, err
}
