package organization

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/attendance-management/internal"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	ListActiveDepartments(ctx context.Context) ([]*userDatamodel.Department, error)
	ListActivePositions(ctx context.Context) ([]*userDatamodel.Position, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Departments(ctx context.Context) ([]*Department, error) {
	rows, err := s.repo.ListActiveDepartments(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}

	out := make([]*Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, DepartmentFromDataModel(row))
	}
	return out, nil
}

// Positions are returned ordered by level, highest first.
func (s *Service) Positions(ctx context.Context) ([]*Position, error) {
	rows, err := s.repo.ListActivePositions(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list positions", "error", err)
		return nil, internal.NewInternalError("failed to list positions", err)
	}

	out := make([]*Position, 0, len(rows))
	for _, row := range rows {
		out = append(out, PositionFromDataModel(row))
	}
	return out, nil
}
