package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/events"
	"github.com/stretchr/testify/mock"
)

// Publisher is a mock type for the Publisher type
type Publisher struct {
	mock.Mock
}

func (_m *Publisher) PublishOrderPlaced(ctx context.Context, event events.OrderPlaced) error {
	ret := _m.Called(ctx, event)

	return ret.Error(0)
}

// NewPublisher creates a new instance of Publisher. It also registers a cleanup function to assert the mocks expectations.
func NewPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Publisher {
	m := &Publisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
