package returns

import (
	"context"
	"fmt"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, shipmentID, reason string) (Record, error) {
	if shipmentID == "" {
		return Record{}, fmt.Errorf("returns: shipment id required")
	}
	if reason == "" {
		return Record{}, fmt.Errorf("returns: reason required")
	}
	return s.repo.Create(ctx, shipmentID, reason)
}

func (s *Service) Resolve(ctx context.Context, returnID string) (Record, error) {
	return s.repo.Resolve(ctx, returnID)
}

func (s *Service) List(ctx context.Context, shipmentID string) ([]Record, error) {
	return s.repo.List(ctx, shipmentID)
}
