package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/userdir-backend/internal/domain"
)

var _ directoryService = &directoryServiceMock{}

type directoryServiceMock struct {
	DefaultLimitFunc func() int
	GetUserFunc      func(ctx context.Context, id uuid.UUID) (*domain.UserRecord, error)
	ListUsersFunc    func(ctx context.Context, req domain.ListRequest) (*domain.UserListing, error)

	calls struct {
		DefaultLimit []struct{}
		GetUser      []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		ListUsers []struct {
			Ctx context.Context
			Req domain.ListRequest
		}
	}
	lockDefaultLimit sync.RWMutex
	lockGetUser      sync.RWMutex
	lockListUsers    sync.RWMutex
}

func (mock *directoryServiceMock) DefaultLimit() int {
	if mock.DefaultLimitFunc == nil {
		panic("directoryServiceMock.DefaultLimitFunc: method is nil but directoryService.DefaultLimit was just called")
	}
	mock.lockDefaultLimit.Lock()
	mock.calls.DefaultLimit = append(mock.calls.DefaultLimit, struct{}{})
	mock.lockDefaultLimit.Unlock()
	return mock.DefaultLimitFunc()
}

func (mock *directoryServiceMock) DefaultLimitCalls() []struct{} {
	mock.lockDefaultLimit.RLock()
	calls := mock.calls.DefaultLimit
	mock.lockDefaultLimit.RUnlock()
	return calls
}

func (mock *directoryServiceMock) GetUser(ctx context.Context, id uuid.UUID) (*domain.UserRecord, error) {
	if mock.GetUserFunc == nil {
		panic("directoryServiceMock.GetUserFunc: method is nil but directoryService.GetUser was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetUser.Lock()
	mock.calls.GetUser = append(mock.calls.GetUser, callInfo)
	mock.lockGetUser.Unlock()
	return mock.GetUserFunc(ctx, id)
}

func (mock *directoryServiceMock) GetUserCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetUser.RLock()
	calls := mock.calls.GetUser
	mock.lockGetUser.RUnlock()
	return calls
}

func (mock *directoryServiceMock) ListUsers(ctx context.Context, req domain.ListRequest) (*domain.UserListing, error) {
	if mock.ListUsersFunc == nil {
		panic("directoryServiceMock.ListUsersFunc: method is nil but directoryService.ListUsers was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Req domain.ListRequest
	}{Ctx: ctx, Req: req}
	mock.lockListUsers.Lock()
	mock.calls.ListUsers = append(mock.calls.ListUsers, callInfo)
	mock.lockListUsers.Unlock()
	return mock.ListUsersFunc(ctx, req)
}

func (mock *directoryServiceMock) ListUsersCalls() []struct {
	Ctx context.Context
	Req domain.ListRequest
} {
	mock.lockListUsers.RLock()
	calls := mock.calls.ListUsers
	mock.lockListUsers.RUnlock()
	return calls
}
