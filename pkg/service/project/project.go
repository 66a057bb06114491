// Package project manages the investable project catalogue.
package project

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
)

// Filter narrows public listings.
type Filter struct {
	Category string
	Featured *bool
	repository.Page
}

// Service manages projects.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a project service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, logger: logger.With("service", "project")}
}

// List returns active projects, featured and high priority first.
func (s *Service) List(ctx context.Context, f Filter) ([]*project.Project, int64, error) {
	return s.AdminList(ctx, repository.ProjectFilter{
		Statuses: []project.Status{project.StatusActive},
		Category: f.Category,
		Featured: f.Featured,
		Page:     f.Page,
	})
}

// AdminList returns projects in any status.
func (s *Service) AdminList(ctx context.Context, f repository.ProjectFilter) ([]*project.Project, int64, error) {
	projects, err := s.uow.ProjectRepository()
	if err != nil {
		return nil, 0, err
	}
	f.Page = f.Page.Normalize()
	return projects.List(ctx, f)
}

// ListByOwner returns a business owner's submissions.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, page repository.Page) ([]*project.Project, int64, error) {
	return s.AdminList(ctx, repository.ProjectFilter{OwnerID: &ownerID, Page: page})
}

// Get returns a project unless it was removed.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := s.get(ctx, s.uow, id)
	if err != nil {
		return nil, err
	}
	if p.Status == project.StatusRemoved {
		return nil, domain.ErrProjectNotFound
	}
	return p, nil
}

// Create publishes a project directly as active.
func (s *Service) Create(ctx context.Context, params project.Params) (*project.Project, error) {
	return s.create(ctx, params, project.StatusActive, nil)
}

// Submit files a business owner's project for admin review.
func (s *Service) Submit(ctx context.Context, ownerID uuid.UUID, params project.Params) (*project.Project, error) {
	return s.create(ctx, params, project.StatusPendingReview, &ownerID)
}

func (s *Service) create(
	ctx context.Context,
	params project.Params,
	status project.Status,
	ownerID *uuid.UUID,
) (*project.Project, error) {
	p, err := project.New(params, status, ownerID)
	if err != nil {
		return nil, err
	}
	projects, err := s.uow.ProjectRepository()
	if err != nil {
		return nil, err
	}
	if err := projects.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Project created", "project_id", p.ID, "status", p.Status)
	return p, nil
}

// Update replaces the editable fields. Changing the goal leaves the ownership
// percent of existing investments as it was.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params project.Params) (*project.Project, error) {
	return s.update(ctx, id, params, func(*project.Project) error { return nil })
}

// Resubmit lets an owner revise a project an admin sent back and queues it
// for review again.
func (s *Service) Resubmit(ctx context.Context, ownerID, id uuid.UUID, params project.Params) (*project.Project, error) {
	return s.update(ctx, id, params, func(p *project.Project) error {
		if p.OwnerID == nil || *p.OwnerID != ownerID {
			return domain.ErrNotOwner
		}
		if p.Status != project.StatusChangesRequested {
			return fmt.Errorf("%w: project is %s", domain.ErrNotPending, p.Status)
		}
		p.Status = project.StatusPendingReview
		return nil
	})
}

func (s *Service) update(
	ctx context.Context,
	id uuid.UUID,
	params project.Params,
	check func(*project.Project) error,
) (p *project.Project, err error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		if p, err = s.get(ctx, tx, id); err != nil {
			return err
		}
		if err := check(p); err != nil {
			return err
		}
		p.Apply(params)
		projects, err := tx.ProjectRepository()
		if err != nil {
			return err
		}
		return projects.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Project updated", "project_id", id)
	return p, nil
}

// Review applies an admin decision to a submitted project.
func (s *Service) Review(ctx context.Context, id uuid.UUID, decision project.ReviewDecision) (p *project.Project, err error) {
	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		if p, err = s.get(ctx, tx, id); err != nil {
			return err
		}
		status, err := p.Review(decision)
		if err != nil {
			return err
		}
		projects, err := tx.ProjectRepository()
		if err != nil {
			return err
		}
		if err := projects.SetStatus(ctx, id, status); err != nil {
			return err
		}
		p.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Project reviewed", "project_id", id, "decision", decision, "status", p.Status)
	return p, nil
}

// SetStatus forces a project into status.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status project.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	projects, err := s.uow.ProjectRepository()
	if err != nil {
		return err
	}
	if err := projects.SetStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.Info("Project status changed", "project_id", id, "status", status)
	return nil
}

// Remove hides a project. Its investments and history are kept.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.SetStatus(ctx, id, project.StatusRemoved)
}

func (s *Service) get(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID) (*project.Project, error) {
	projects, err := uow.ProjectRepository()
	if err != nil {
		return nil, err
	}
	return projects.Get(ctx, id)
}
