package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/testutil"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutil.TerminateContainer(context.Background())
	os.Exit(code)
}

func TestCustomerRepository_Integration(t *testing.T) {
	suite := testutil.NewIntegrationSuite(t)
	repo := NewCustomerRepository(suite.DB)
	ctx := testutil.DefaultTestContext(t)

	c := &Customer{
		FirstName:        "Erika",
		LastName:         "Mustermann",
		DateOfBirth:      "1964-08-12",
		IDNumber:         "C01X00T47",
		IDType:           "Passport",
		BankStatementURL: testutil.PtrString("https://utfs.io/f/bank.png"),
	}
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, StatusNewLead, c.Status)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mustermann", got.LastName)
	assert.Nil(t, got.TrustScore)
	assert.Nil(t, got.IDImageURL)

	updated, old, err := repo.UpdateStatus(ctx, c.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusNewLead, old)
	assert.Equal(t, StatusApproved, updated.Status)

	approved := StatusApproved
	list, err := repo.List(ctx, ListParams{Status: &approved})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[StatusApproved])
	assert.Equal(t, 0, counts[StatusNewLead])

	scored, err := repo.UpdateScore(ctx, c.ID, 66, `{"recommendation":"approve"}`)
	require.NoError(t, err)
	assert.Equal(t, 66, *scored.TrustScore)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), errors.ErrNotFound)
}

func TestCustomerRepository_Integration_Constraints(t *testing.T) {
	suite := testutil.NewIntegrationSuite(t)
	repo := NewCustomerRepository(suite.DB)
	ctx := testutil.DefaultTestContext(t)

	err := repo.Create(ctx, &Customer{FirstName: "A", LastName: "B", Status: "Closed"})
	assert.ErrorIs(t, err, errors.ErrValidation)

	err = repo.Create(ctx, &Customer{FirstName: "A", LastName: "B", TrustScore: testutil.PtrInt(150)})
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, errors.ErrBadRequest)
}
