package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/testutil"
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	c := &Customer{FirstName: "John", LastName: "Smith", IDType: "Driver License"}
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, StatusNewLead, c.Status)
	assert.False(t, c.CreatedAt.IsZero())

	updated, old, err := repo.UpdateStatus(ctx, c.ID, StatusContacted)
	require.NoError(t, err)
	assert.Equal(t, StatusNewLead, old)
	assert.Equal(t, StatusContacted, updated.Status)

	scored, err := repo.UpdateScore(ctx, c.ID, 58, `{"recommendation":"deposit"}`)
	require.NoError(t, err)
	assert.Equal(t, 58, *scored.TrustScore)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusContacted, got.Status)
	assert.Equal(t, `{"recommendation":"deposit"}`, *got.TrustScoreDetails)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), errors.ErrNotFound)
}

func TestMemoryRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &Customer{FirstName: name, LastName: "x"}))
	}

	list, err := repo.List(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].FirstName)
	assert.Equal(t, "first", list[2].FirstName)
}

func TestMemoryRepository_FilterAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	a := &Customer{FirstName: "A", LastName: "x"}
	b := &Customer{FirstName: "B", LastName: "x", Status: StatusOnHold}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	onHold := StatusOnHold
	list, err := repo.List(ctx, ListParams{Status: &onHold})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].FirstName)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[StatusNewLead])
	assert.Equal(t, 1, counts[StatusOnHold])
	assert.Equal(t, 0, counts[StatusApproved])
}

func TestMemoryRepository_Constraints(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	err := repo.Create(ctx, &Customer{FirstName: "A", Status: "Closed"})
	assert.ErrorIs(t, err, errors.ErrValidation)

	err = repo.Create(ctx, &Customer{FirstName: "A", TrustScore: testutil.PtrInt(101)})
	assert.ErrorIs(t, err, errors.ErrValidation)

	c := &Customer{FirstName: "A"}
	require.NoError(t, repo.Create(ctx, c))
	_, _, err = repo.UpdateStatus(ctx, c.ID, "Closed")
	assert.ErrorIs(t, err, errors.ErrValidation)
	_, err = repo.UpdateScore(ctx, c.ID, -1, "")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	url := "https://utfs.io/f/id.png"
	c := &Customer{FirstName: "A", IDImageURL: &url}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	*got.IDImageURL = "tampered"
	got.FirstName = "tampered"

	again, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.FirstName)
	assert.Equal(t, "https://utfs.io/f/id.png", *again.IDImageURL)
}
