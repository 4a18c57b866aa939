package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"paysync/internal/domain"
	"paysync/internal/service"
)

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) GetBalance(ctx context.Context, userID string) (*service.BalanceResult, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).(*service.BalanceResult)
	return res, args.Error(1)
}

func (m *mockAccounts) Deposit(ctx context.Context, req *service.AmountRequest) (*service.MovementResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.MovementResult)
	return res, args.Error(1)
}

func (m *mockAccounts) Withdraw(ctx context.Context, req *service.AmountRequest) (*service.MovementResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.MovementResult)
	return res, args.Error(1)
}

func (m *mockAccounts) Transfer(ctx context.Context, req *service.TransferRequest) (*service.TransferResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.TransferResult)
	return res, args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) CreateUser(ctx context.Context, req *service.CreateUserRequest) (*service.UserWithAccount, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.UserWithAccount)
	return res, args.Error(1)
}

func (m *mockUsers) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).([]domain.User)
	return res, args.Error(1)
}
