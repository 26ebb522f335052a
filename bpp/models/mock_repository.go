package models

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetApplicationStats(ctx context.Context, benefitIDs []string) (map[string]ApplicationStats, error) {
	args := m.Called(ctx, benefitIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]ApplicationStats), args.Error(1)
}
