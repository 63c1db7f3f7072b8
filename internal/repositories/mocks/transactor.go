package mocks

import (
	"context"

	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// Transactor is a mock type for the Transactor type. WithinTx records the
// call and, unless an error is configured for it, runs fn against Repos.
type Transactor struct {
	mock.Mock
	Repos repository.TxRepositories
}

func (_m *Transactor) WithinTx(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	ret := _m.Called(ctx)

	if err := ret.Error(0); err != nil {
		return err
	}

	return fn(_m.Repos)
}

// NewTransactor creates a new instance of Transactor. It also registers a cleanup function to assert the mocks expectations.
func NewTransactor(t interface {
	mock.TestingT
	Cleanup(func())
}, repos repository.TxRepositories) *Transactor {
	m := &Transactor{Repos: repos}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
