package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// The cache client degrades to a pass-through when nil, so these tests see
// every read hit the repository; caching itself is covered in the cache
// package.
func TestJurisdictionService_List(t *testing.T) {
	mockRepo := new(MockJurisdictionRepository)
	mockRepo.On("List", mock.Anything).Return([]model.Jurisdiction{
		{ID: 1, Name: "State Bar of California", Code: "US-CA", Region: "California"},
		{ID: 2, Name: "Law Society of Ontario", Code: "CA-ON", Region: "Ontario"},
	}, nil)

	svc := NewJurisdictionService(mockRepo, nil)
	jurisdictions, err := svc.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, jurisdictions, 2)
	assert.Equal(t, "US-CA", jurisdictions[0].Code)
	mockRepo.AssertExpectations(t)
}

func TestJurisdictionService_Create(t *testing.T) {
	t.Run("persists the fields", func(t *testing.T) {
		mockRepo := new(MockJurisdictionRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *model.Jurisdiction) bool {
			return j.Name == "State Bar of Texas" && j.Code == "US-TX"
		})).Return(nil)

		svc := NewJurisdictionService(mockRepo, nil)
		jurisdiction, err := svc.Create(context.Background(), JurisdictionInput{
			Name: "State Bar of Texas", Code: "US-TX", Region: "Texas",
		})

		assert.NoError(t, err)
		assert.Equal(t, "US-TX", jurisdiction.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate code conflicts", func(t *testing.T) {
		mockRepo := new(MockJurisdictionRepository)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Jurisdiction")).
			Return(gorm.ErrDuplicatedKey)

		svc := NewJurisdictionService(mockRepo, nil)
		_, err := svc.Create(context.Background(), JurisdictionInput{Name: "Dup", Code: "US-TX"})

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestJurisdictionService_Update(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		mockRepo := new(MockJurisdictionRepository)
		mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewJurisdictionService(mockRepo, nil)
		_, err := svc.Update(context.Background(), 9, JurisdictionInput{Name: "X", Code: "X"})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("overwrites all fields", func(t *testing.T) {
		mockRepo := new(MockJurisdictionRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Jurisdiction{
			ID: 1, Name: "Old", Code: "OLD",
		}, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(j *model.Jurisdiction) bool {
			return j.ID == 1 && j.Name == "New Name" && j.Code == "NEW" && j.Region == "Somewhere"
		})).Return(nil)

		svc := NewJurisdictionService(mockRepo, nil)
		jurisdiction, err := svc.Update(context.Background(), 1, JurisdictionInput{
			Name: "New Name", Code: "NEW", Region: "Somewhere",
		})

		assert.NoError(t, err)
		assert.Equal(t, "NEW", jurisdiction.Code)
		mockRepo.AssertExpectations(t)
	})
}

func TestJurisdictionService_Delete(t *testing.T) {
	mockRepo := new(MockJurisdictionRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Jurisdiction{ID: 1}, nil)
	mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil)

	svc := NewJurisdictionService(mockRepo, nil)
	err := svc.Delete(context.Background(), 1)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
