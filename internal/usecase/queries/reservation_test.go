//go:build unit

package queries_test

import (
	"context"
	"testing"

	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/queries"
	queriesmock "concert-reservation/tests/mock/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGetByID(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name    string
		actor   uuid.UUID
		repoErr error
		wantErr error
	}{
		{name: "owner sees the reservation", actor: owner},
		{name: "other account gets not found", actor: uuid.New(), wantErr: errs.ErrNotFound},
		{name: "repository error is passed through", actor: owner, repoErr: errs.Mark(errs.New("gone"), errs.ErrNotFound), wantErr: errs.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := queriesmock.NewMockReservationViewRepo(ctrl)

			view := &queries.ReservationView{ID: 7, AccountID: owner, Status: "ACTIVE"}
			if tt.repoErr != nil {
				repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(nil, tt.repoErr)
			} else {
				repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(view, nil)
			}

			got, err := queries.NewReservationQueries(repo).GetByID(context.Background(), tt.actor, 7)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errs.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, view, got)
		})
	}
}

func TestListByAccount_ClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int32
	}{
		{name: "zero uses default", limit: 0, want: 50},
		{name: "negative uses default", limit: -3, want: 50},
		{name: "within bounds", limit: 20, want: 20},
		{name: "above max is clamped", limit: 1000, want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := queriesmock.NewMockReservationViewRepo(ctrl)
			accountID := uuid.New()

			repo.EXPECT().FindByAccountID(gomock.Any(), accountID, tt.want).Return(nil, nil)

			_, err := queries.NewReservationQueries(repo).ListByAccount(context.Background(), accountID, tt.limit)
			require.NoError(t, err)
		})
	}
}
