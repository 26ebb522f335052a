package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/benefits-network/benefits-bpp/bpp/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Search(ctx context.Context, req models.SearchRequest) (*models.OnActionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnActionResponse), args.Error(1)
}

func (m *MockService) Select(ctx context.Context, req models.SelectRequest) (*models.OnActionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnActionResponse), args.Error(1)
}

func (m *MockService) Init(ctx context.Context, req models.InitRequest) (*models.InitRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InitRequest), args.Error(1)
}

func (m *MockService) ListBenefits(ctx context.Context, params models.ListBenefitsParams, authorization string) (json.RawMessage, error) {
	args := m.Called(ctx, params, authorization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockService) GetBenefit(ctx context.Context, id string) (json.RawMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
