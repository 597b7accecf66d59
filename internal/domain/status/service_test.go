package status_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatusService_Set(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.StatusRepository{}
	repo.On("Upsert", ctx, mock.MatchedBy(func(rec *status.Record) bool {
		return rec.PartyID == "p-1" && rec.CurrentStatus == status.StatusSync
	})).Return(nil)

	svc := status.NewService(repo, nil)
	require.NoError(t, svc.Set(ctx, "p-1", status.StatusSync))
	repo.AssertExpectations(t)
}

func TestStatusService_Set_AnyToAny(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.StatusRepository{}
	repo.On("Upsert", ctx, mock.Anything).Return(nil)

	svc := status.NewService(repo, nil)
	for _, s := range []status.Status{status.StatusAlone, status.StatusSteady, status.StatusSync, status.StatusAlone} {
		require.NoError(t, svc.Set(ctx, "p-1", s))
	}
	repo.AssertNumberOfCalls(t, "Upsert", 4)
}

func TestStatusService_Set_Invalid(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.StatusRepository{}

	svc := status.NewService(repo, nil)
	require.ErrorIs(t, svc.Set(ctx, "p-1", "BUSY"), status.ErrInvalidStatus)
	require.ErrorIs(t, svc.Set(ctx, " ", status.StatusSync), status.ErrInvalidInput)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestStatusService_Set_StoreError(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.StatusRepository{}
	boom := errors.New("network down")
	repo.On("Upsert", ctx, mock.Anything).Return(boom)

	svc := status.NewService(repo, nil)
	require.ErrorIs(t, svc.Set(ctx, "p-1", status.StatusSync), boom)
}

func TestFind(t *testing.T) {
	recs := []status.Record{
		{PartyID: "p-1", CurrentStatus: status.StatusAlone},
		{PartyID: "p-2", CurrentStatus: status.StatusSync},
	}
	require.Equal(t, status.StatusAlone, status.Find(recs, "p-1"))
	require.Equal(t, status.StatusSync, status.Find(recs, "p-2"))
	require.Equal(t, status.StatusSteady, status.Find(recs, "p-3"))
	require.Equal(t, status.StatusSteady, status.Find(nil, "p-1"))
}
