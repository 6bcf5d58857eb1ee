package delivery

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, shipmentID, receivedBy string, deliveredAt time.Time, notes *string) (Record, error) {
	if shipmentID == "" {
		return Record{}, fmt.Errorf("delivery: shipment id required")
	}
	if receivedBy == "" {
		return Record{}, fmt.Errorf("delivery: received-by required")
	}
	if deliveredAt.IsZero() {
		deliveredAt = time.Now()
	}
	return s.repo.Create(ctx, shipmentID, receivedBy, deliveredAt, notes)
}

func (s *Service) List(ctx context.Context, shipmentID string) ([]Record, error) {
	return s.repo.List(ctx, shipmentID)
}
