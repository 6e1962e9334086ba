package portfolio

import (
	"testing"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	testingpkg "github.com/aristath/hindsight/internal/testing"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db := testingpkg.NewTestDB(t, "portfolio")

	repo := NewRepository(db.Conn(), zerolog.Nop())
	clock := testingpkg.FixedNow
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func TestRepository_AddAssignsIdentity(t *testing.T) {
	repo := newTestRepository(t)

	item := &Item{AssetID: domain.AssetDollar, InitialAmount: 600, Units: 100, Date: "2020-01-06"}
	require.NoError(t, repo.Add(item))

	_, err := uuid.Parse(item.ID)
	assert.NoError(t, err)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := repo.Get(item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, domain.AssetDollar, got.AssetID)
	assert.Equal(t, 600.0, got.InitialAmount)
	assert.Equal(t, 100.0, got.Units)
	assert.Equal(t, "2020-01-06", got.Date)
	assert.Empty(t, got.CryptoID)
	assert.Equal(t, item.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
}

func TestRepository_ListOrderAndSubIDs(t *testing.T) {
	repo := newTestRepository(t)

	items := []*Item{
		{AssetID: domain.AssetCrypto, InitialAmount: 100, Date: "2021-01-04", CryptoID: "bitcoin"},
		{AssetID: domain.AssetStock, InitialAmount: 200, Date: "2022-01-03", EquitySymbol: "THYAO.IS"},
		{AssetID: domain.AssetCar, InitialAmount: 300, Date: "2019-06-01", CarID: "fiat-egea"},
	}
	for _, item := range items {
		require.NoError(t, repo.Add(item))
	}

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 3)

	expected := []string{"bitcoin", "THYAO.IS", "fiat-egea"}
	for i, item := range list {
		assert.Equal(t, items[i].ID, item.ID)
		assert.Equal(t, expected[i], item.SubID())
	}
}

func TestRepository_ListEmpty(t *testing.T) {
	repo := newTestRepository(t)

	list, err := repo.List()
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.Get("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_Remove(t *testing.T) {
	repo := newTestRepository(t)

	item := &Item{AssetID: domain.AssetGold, InitialAmount: 1000, Date: "2020-01-06"}
	require.NoError(t, repo.Add(item))

	require.NoError(t, repo.Remove(item.ID))

	got, err := repo.Get(item.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.Remove(item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}
