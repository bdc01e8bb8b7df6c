package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/alexmeleta/compliance-mait-api/internal/cache"
	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

const (
	jurisdictionListKey = "jurisdictions:all"
	jurisdictionListTTL = 5 * time.Minute
)

// JurisdictionInput carries the writable jurisdiction fields.
type JurisdictionInput struct {
	Name   string
	Code   string
	Region string
}

// JurisdictionService manages the jurisdiction reference list. Reads go
// through the cache: the list changes rarely but is read on every
// certificate form. Writes invalidate it.
type JurisdictionService interface {
	List(ctx context.Context) ([]model.Jurisdiction, error)
	Get(ctx context.Context, id uint) (*model.Jurisdiction, error)
	Create(ctx context.Context, in JurisdictionInput) (*model.Jurisdiction, error)
	Update(ctx context.Context, id uint, in JurisdictionInput) (*model.Jurisdiction, error)
	Delete(ctx context.Context, id uint) error
}

type jurisdictionService struct {
	jurisdictionRepo repository.JurisdictionRepository
	cache            *cache.Client
}

// NewJurisdictionService creates a jurisdiction service.
func NewJurisdictionService(jurisdictionRepo repository.JurisdictionRepository, cache *cache.Client) JurisdictionService {
	return &jurisdictionService{jurisdictionRepo: jurisdictionRepo, cache: cache}
}

func (s *jurisdictionService) List(ctx context.Context) ([]model.Jurisdiction, error) {
	payload, err := s.cache.GetOrLoad(ctx, jurisdictionListKey, jurisdictionListTTL, func(ctx context.Context) ([]byte, error) {
		jurisdictions, err := s.jurisdictionRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list jurisdictions: %w", err)
		}
		return json.Marshal(jurisdictions)
	})
	if err != nil {
		return nil, err
	}

	var jurisdictions []model.Jurisdiction
	if err := json.Unmarshal(payload, &jurisdictions); err != nil {
		return nil, fmt.Errorf("decode cached jurisdictions: %w", err)
	}
	return jurisdictions, nil
}

func (s *jurisdictionService) Get(ctx context.Context, id uint) (*model.Jurisdiction, error) {
	jurisdiction, err := s.jurisdictionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find jurisdiction: %w", err)
	}
	return jurisdiction, nil
}

func (s *jurisdictionService) Create(ctx context.Context, in JurisdictionInput) (*model.Jurisdiction, error) {
	jurisdiction := &model.Jurisdiction{
		Name:   in.Name,
		Code:   in.Code,
		Region: in.Region,
	}
	if err := s.jurisdictionRepo.Create(ctx, jurisdiction); err != nil {
		return nil, mapDuplicate(err, "jurisdiction code already exists")
	}

	_ = s.cache.Delete(ctx, jurisdictionListKey)
	return jurisdiction, nil
}

func (s *jurisdictionService) Update(ctx context.Context, id uint, in JurisdictionInput) (*model.Jurisdiction, error) {
	jurisdiction, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	jurisdiction.Name = in.Name
	jurisdiction.Code = in.Code
	jurisdiction.Region = in.Region
	if err := s.jurisdictionRepo.Update(ctx, jurisdiction); err != nil {
		return nil, mapDuplicate(err, "jurisdiction code already exists")
	}

	_ = s.cache.Delete(ctx, jurisdictionListKey)
	return jurisdiction, nil
}

func (s *jurisdictionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.jurisdictionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete jurisdiction: %w", err)
	}

	_ = s.cache.Delete(ctx, jurisdictionListKey)
	return nil
}
