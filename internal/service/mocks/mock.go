// Package mocks holds testify mocks of the service interfaces consumed by
// the HTTP handlers and the batch jobs.
package mocks

import (
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t testingT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

func getOrNil[T any](ret mock.Arguments, index int) T {
	var zero T
	if v := ret.Get(index); v != nil {
		return v.(T)
	}
	return zero
}
