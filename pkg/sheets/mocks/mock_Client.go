// Package mocks provides test doubles for the sheets client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// GetValues provides a mock function with given fields: ctx, spreadsheetID, rng
func (_m *MockClient) GetValues(ctx context.Context, spreadsheetID string, rng string) ([][]string, error) {
	ret := _m.Called(ctx, spreadsheetID, rng)

	if len(ret) == 0 {
		panic("no return value specified for GetValues")
	}

	var r0 [][]string
	if rf, ok := ret.Get(0).(func(context.Context, string, string) ([][]string, error)); ok {
		return rf(ctx, spreadsheetID, rng)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([][]string)
	}

	return r0, ret.Error(1)
}

// UpdateValues provides a mock function with given fields: ctx, spreadsheetID, rng, values
func (_m *MockClient) UpdateValues(ctx context.Context, spreadsheetID string, rng string, values [][]string) error {
	ret := _m.Called(ctx, spreadsheetID, rng, values)

	if len(ret) == 0 {
		panic("no return value specified for UpdateValues")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, string, [][]string) error); ok {
		return rf(ctx, spreadsheetID, rng, values)
	}
	return ret.Error(0)
}

// ClearValues provides a mock function with given fields: ctx, spreadsheetID, rng
func (_m *MockClient) ClearValues(ctx context.Context, spreadsheetID string, rng string) error {
	ret := _m.Called(ctx, spreadsheetID, rng)

	if len(ret) == 0 {
		panic("no return value specified for ClearValues")
	}

	return ret.Error(0)
}

// SheetTitles provides a mock function with given fields: ctx, spreadsheetID
func (_m *MockClient) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	ret := _m.Called(ctx, spreadsheetID)

	if len(ret) == 0 {
		panic("no return value specified for SheetTitles")
	}

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	return r0, ret.Error(1)
}

// AddSheet provides a mock function with given fields: ctx, spreadsheetID, title
func (_m *MockClient) AddSheet(ctx context.Context, spreadsheetID string, title string) error {
	ret := _m.Called(ctx, spreadsheetID, title)

	if len(ret) == 0 {
		panic("no return value specified for AddSheet")
	}

	return ret.Error(0)
}

// NewMockClient creates a new instance of MockClient. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
