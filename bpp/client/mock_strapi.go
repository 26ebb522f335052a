package client

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

type MockContentClient struct {
	mock.Mock
}

func (m *MockContentClient) GetBenefits(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockContentClient) GetBenefit(ctx context.Context, id string) (json.RawMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockContentClient) ListBenefits(ctx context.Context, query, authorization string) ([]byte, error) {
	args := m.Called(ctx, query, authorization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockContentClient) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
