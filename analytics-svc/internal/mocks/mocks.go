package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

type Store struct {
	mock.Mock
}

func (m *Store) RecordTransition(msg domain.AuditMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}
