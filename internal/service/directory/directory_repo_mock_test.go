package directory

import (
	"context"
	"github.com/google/uuid"
	pgdirectory "github.com/heartmarshall/userdir-backend/internal/adapter/postgres/directory"
	"github.com/heartmarshall/userdir-backend/internal/domain"
	"sync"
)

var _ directoryRepo = &directoryRepoMock{}

type directoryRepoMock struct {
	CountMatchingFunc func(ctx context.Context, plan pgdirectory.Plan) (int, error)

	FetchPageFunc func(ctx context.Context, plan pgdirectory.Plan) ([]domain.UserRow, error)

	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.UserRow, error)

	calls struct {
		CountMatching []struct {
			Ctx  context.Context
			Plan pgdirectory.Plan
		}
		FetchPage []struct {
			Ctx  context.Context
			Plan pgdirectory.Plan
		}
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
	}
	lockCountMatching sync.RWMutex
	lockFetchPage     sync.RWMutex
	lockGetByID       sync.RWMutex
}

func (mock *directoryRepoMock) CountMatching(ctx context.Context, plan pgdirectory.Plan) (int, error) {
	if mock.CountMatchingFunc == nil {
		panic("directoryRepoMock.CountMatchingFunc: method is nil but directoryRepo.CountMatching was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Plan pgdirectory.Plan
	}{Ctx: ctx, Plan: plan}
	mock.lockCountMatching.Lock()
	mock.calls.CountMatching = append(mock.calls.CountMatching, callInfo)
	mock.lockCountMatching.Unlock()
	return mock.CountMatchingFunc(ctx, plan)
}

func (mock *directoryRepoMock) CountMatchingCalls() []struct {
	Ctx  context.Context
	Plan pgdirectory.Plan
} {
	mock.lockCountMatching.RLock()
	calls := mock.calls.CountMatching
	mock.lockCountMatching.RUnlock()
	return calls
}

func (mock *directoryRepoMock) FetchPage(ctx context.Context, plan pgdirectory.Plan) ([]domain.UserRow, error) {
	if mock.FetchPageFunc == nil {
		panic("directoryRepoMock.FetchPageFunc: method is nil but directoryRepo.FetchPage was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Plan pgdirectory.Plan
	}{Ctx: ctx, Plan: plan}
	mock.lockFetchPage.Lock()
	mock.calls.FetchPage = append(mock.calls.FetchPage, callInfo)
	mock.lockFetchPage.Unlock()
	return mock.FetchPageFunc(ctx, plan)
}

func (mock *directoryRepoMock) FetchPageCalls() []struct {
	Ctx  context.Context
	Plan pgdirectory.Plan
} {
	mock.lockFetchPage.RLock()
	calls := mock.calls.FetchPage
	mock.lockFetchPage.RUnlock()
	return calls
}

func (mock *directoryRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserRow, error) {
	if mock.GetByIDFunc == nil {
		panic("directoryRepoMock.GetByIDFunc: method is nil but directoryRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *directoryRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}
