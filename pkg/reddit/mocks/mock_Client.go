// Package mocks provides test doubles for the reddit client.
package mocks

import (
	"context"
	"iter"

	reddit "github.com/sells-group/misinfo-cli/pkg/reddit"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Submissions provides a mock function with given fields: ctx, q
func (_m *MockClient) Submissions(ctx context.Context, q reddit.Query) iter.Seq2[reddit.Submission, error] {
	ret := _m.Called(ctx, q)

	if len(ret) == 0 {
		panic("no return value specified for Submissions")
	}

	var r0 iter.Seq2[reddit.Submission, error]
	if rf, ok := ret.Get(0).(func(context.Context, reddit.Query) iter.Seq2[reddit.Submission, error]); ok {
		r0 = rf(ctx, q)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(iter.Seq2[reddit.Submission, error])
	}

	return r0
}

// UserComments provides a mock function with given fields: ctx, user, limit
func (_m *MockClient) UserComments(ctx context.Context, user string, limit int) ([]reddit.Comment, error) {
	ret := _m.Called(ctx, user, limit)

	if len(ret) == 0 {
		panic("no return value specified for UserComments")
	}

	var r0 []reddit.Comment
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int) ([]reddit.Comment, error)); ok {
		return rf(ctx, user, limit)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]reddit.Comment)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// Seq returns an iterator over subs that yields err, if non-nil, after them.
func Seq(subs []reddit.Submission, err error) iter.Seq2[reddit.Submission, error] {
	return func(yield func(reddit.Submission, error) bool) {
		for _, s := range subs {
			if !yield(s, nil) {
				return
			}
		}
		if err != nil {
			yield(reddit.Submission{}, err)
		}
	}
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
