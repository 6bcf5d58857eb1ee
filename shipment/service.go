package shipment

import (
	"context"
	"fmt"
)

// Store abstracts repository operations for the service.
type Store interface {
	Create(ctx context.Context, params CreateParams) (Shipment, error)
	GetByID(ctx context.Context, id string) (Shipment, error)
	List(ctx context.Context, filters ListFilters) ([]Shipment, int, error)
}

// Service validates shipment registration before it reaches storage.
type Service struct {
	repo Store
}

func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (Shipment, error) {
	if params.BilityNumber == "" {
		return Shipment{}, fmt.Errorf("shipment: bility number required")
	}
	if params.SenderID == "" || params.ReceiverID == "" {
		return Shipment{}, fmt.Errorf("shipment: sender and receiver required")
	}
	if params.FromCityID == "" || params.ToCityID == "" {
		return Shipment{}, fmt.Errorf("shipment: origin and destination cities required")
	}
	if params.Quantity <= 0 {
		return Shipment{}, fmt.Errorf("shipment: quantity must be positive")
	}
	if params.Freight < 0 || params.LocalCharge < 0 || params.BilityCharge < 0 || params.OtherCharge < 0 {
		return Shipment{}, fmt.Errorf("shipment: charges must not be negative")
	}

	return s.repo.Create(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (Shipment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Shipment, int, error) {
	return s.repo.List(ctx, filters)
}
