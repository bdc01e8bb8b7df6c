package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

func TestPermissionService_ResolvePermissions(t *testing.T) {
	tests := []struct {
		name      string
		roleID    uint
		setupMock func(m *MockPermissionRepository)
		want      []string
		wantErr   bool
	}{
		{
			name:   "deduplicates codes",
			roleID: 2,
			setupMock: func(m *MockPermissionRepository) {
				m.On("ListByRoleID", mock.Anything, uint(2)).Return([]model.Permission{
					{Code: model.PermViewCertificate},
					{Code: model.PermCreateCertificate},
					{Code: model.PermViewCertificate},
				}, nil)
			},
			want: []string{model.PermViewCertificate, model.PermCreateCertificate},
		},
		{
			name:   "unknown role resolves to nothing",
			roleID: 99,
			setupMock: func(m *MockPermissionRepository) {
				m.On("ListByRoleID", mock.Anything, uint(99)).Return([]model.Permission{}, nil)
			},
			want: []string{},
		},
		{
			name:   "store failure propagates",
			roleID: 2,
			setupMock: func(m *MockPermissionRepository) {
				m.On("ListByRoleID", mock.Anything, uint(2)).Return(nil, errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockPermissionRepository)
			tt.setupMock(mockRepo)

			svc := NewPermissionService(mockRepo)
			codes, err := svc.ResolvePermissions(context.Background(), tt.roleID)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, codes)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
