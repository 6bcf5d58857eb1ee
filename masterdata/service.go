package masterdata

import (
	"context"
	"fmt"
	"strings"
)

// Service exposes business-level master-data operations.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCity(ctx context.Context, name string) (City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return City{}, fmt.Errorf("masterdata: city name required")
	}
	return s.repo.CreateCity(ctx, name)
}

func (s *Service) ListCities(ctx context.Context) ([]City, error) {
	return s.repo.ListCities(ctx)
}

func (s *Service) CreateAgency(ctx context.Context, name, cityID string, phone *string) (Agency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Agency{}, fmt.Errorf("masterdata: agency name required")
	}
	if cityID == "" {
		return Agency{}, fmt.Errorf("masterdata: agency city required")
	}
	return s.repo.CreateAgency(ctx, name, cityID, phone)
}

func (s *Service) ListAgencies(ctx context.Context) ([]Agency, error) {
	return s.repo.ListAgencies(ctx)
}

func (s *Service) CreateVehicle(ctx context.Context, number, kind string) (Vehicle, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return Vehicle{}, fmt.Errorf("masterdata: vehicle number required")
	}
	return s.repo.CreateVehicle(ctx, number, kind)
}

func (s *Service) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

func (s *Service) CreateParty(ctx context.Context, name string, phone, address, cityID *string) (Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Party{}, fmt.Errorf("masterdata: party name required")
	}
	return s.repo.CreateParty(ctx, name, phone, address, cityID)
}

func (s *Service) ListParties(ctx context.Context) ([]Party, error) {
	return s.repo.ListParties(ctx)
}

func (s *Service) CreateLabourer(ctx context.Context, name string, phone, agencyID *string) (Labourer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Labourer{}, fmt.Errorf("masterdata: labourer name required")
	}
	return s.repo.CreateLabourer(ctx, name, phone, agencyID)
}

func (s *Service) GetLabourer(ctx context.Context, id string) (Labourer, error) {
	return s.repo.GetLabourer(ctx, id)
}

func (s *Service) ListLabourers(ctx context.Context) ([]Labourer, error) {
	return s.repo.ListLabourers(ctx)
}
