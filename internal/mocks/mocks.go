package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockImageStore is a mock implementation of service.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(key)
	return args.Error(0)
}
