// Package mocks provides test doubles for the apify client.
package mocks

import (
	"context"

	apify "github.com/sells-group/lead-scout/pkg/apify"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// StartRun provides a mock function with given fields: ctx, actorID, input
func (_m *MockClient) StartRun(ctx context.Context, actorID string, input any) (*apify.Run, error) {
	ret := _m.Called(ctx, actorID, input)

	if len(ret) == 0 {
		panic("no return value specified for StartRun")
	}

	var r0 *apify.Run
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, any) (*apify.Run, error)); ok {
		return rf(ctx, actorID, input)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*apify.Run)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// GetRun provides a mock function with given fields: ctx, runID
func (_m *MockClient) GetRun(ctx context.Context, runID string) (*apify.Run, error) {
	return _m.run(ctx, "GetRun", runID)
}

// WaitForRun provides a mock function with given fields: ctx, runID
func (_m *MockClient) WaitForRun(ctx context.Context, runID string) (*apify.Run, error) {
	return _m.run(ctx, "WaitForRun", runID)
}

func (_m *MockClient) run(ctx context.Context, method, runID string) (*apify.Run, error) {
	ret := _m.MethodCalled(method, ctx, runID)

	if len(ret) == 0 {
		panic("no return value specified for " + method)
	}

	var r0 *apify.Run
	if rf, ok := ret.Get(0).(func(context.Context, string) (*apify.Run, error)); ok {
		return rf(ctx, runID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*apify.Run)
	}
	return r0, ret.Error(1)
}

// DatasetItems provides a mock function with given fields: ctx, datasetID
func (_m *MockClient) DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error) {
	ret := _m.Called(ctx, datasetID)

	if len(ret) == 0 {
		panic("no return value specified for DatasetItems")
	}

	var r0 []map[string]any
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]map[string]any, error)); ok {
		return rf(ctx, datasetID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]map[string]any)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
