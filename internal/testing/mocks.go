package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/adapt-install/internal/artifact"
	"github.com/imamik/adapt-install/internal/config"
)

// MockInstaller is a mock implementation of artifact.Installer.
type MockInstaller struct {
	mock.Mock
}

// LatestVersion returns the mocked latest release tag.
func (m *MockInstaller) LatestVersion(ctx context.Context, repository string) (string, error) {
	args := m.Called(ctx, repository)
	return args.String(0), args.Error(1)
}

// Install records the requested source.
func (m *MockInstaller) Install(ctx context.Context, src artifact.Source) error {
	args := m.Called(ctx, src)
	return args.Error(0)
}

// NewMockInstaller creates a MockInstaller that reports latest and installs successfully.
func NewMockInstaller(latest string) *MockInstaller {
	m := &MockInstaller{}
	m.On("LatestVersion", mock.Anything, mock.Anything).Return(latest, nil)
	m.On("Install", mock.Anything, mock.Anything).Return(nil)
	return m
}

// MockPersister is a mock of the configuration persister.
type MockPersister struct {
	mock.Mock
}

// Save records a copy of the saved record.
func (m *MockPersister) Save(record config.Record) error {
	args := m.Called(record.Clone())
	return args.Error(0)
}

// NewMockPersister creates a MockPersister that accepts every save.
func NewMockPersister() *MockPersister {
	m := &MockPersister{}
	m.On("Save", mock.Anything).Return(nil)
	return m
}

// Saved returns the records passed to Save, oldest first.
func (m *MockPersister) Saved() []config.Record {
	var out []config.Record
	for _, call := range m.Calls {
		if call.Method == "Save" {
			out = append(out, call.Arguments.Get(0).(config.Record))
		}
	}
	return out
}
