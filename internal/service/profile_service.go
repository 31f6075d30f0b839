package service

import (
	"context"
	"strings"

	"protonshop/internal/model"
	"protonshop/internal/repository"
	"protonshop/pkg/validator"

	"github.com/google/uuid"
)

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	CheckoutPrefill(ctx context.Context, userID uuid.UUID) (*CheckoutRequest, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: repo}
}

// Get returns the stored profile or an empty one for the user.
func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &model.Profile{UserID: userID}, nil
	}
	return p, nil
}

func (s *profileService) Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.Phone = strings.TrimSpace(profile.Phone)
	profile.Address = strings.TrimSpace(profile.Address)
	profile.Municipio = strings.TrimSpace(profile.Municipio)
	profile.Departamento = strings.TrimSpace(profile.Departamento)

	if err := validator.Validate(profile); err != nil {
		return nil, err
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// CheckoutPrefill maps the saved profile onto the checkout form. Fields the
// profile lacks stay blank for the shopper to fill.
func (s *profileService) CheckoutPrefill(ctx context.Context, userID uuid.UUID) (*CheckoutRequest, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CheckoutRequest{
		CustomerName:         p.FullName,
		CustomerPhone:        p.Phone,
		CustomerAddress:      p.Address,
		CustomerMunicipio:    p.Municipio,
		CustomerDepartamento: p.Departamento,
		UserID:               &userID,
	}, nil
}
