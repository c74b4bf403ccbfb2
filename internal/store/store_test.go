package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/guild-birthday/internal/engine"
	"github.com/tartampluch/guild-birthday/internal/store"
)

const testGuild = uint64(4242)

func openRepo(t *testing.T) *store.Repository {
	t.Helper()
	repo, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestFetchBirthdays_OrderedByCalendar(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	// Insert deliberately out of calendar order.
	require.NoError(t, repo.SetBirthday(ctx, testGuild, engine.StoredBirthday{UserID: 1, Month: 12, Day: 31}))
	require.NoError(t, repo.SetBirthday(ctx, testGuild, engine.StoredBirthday{UserID: 2, Month: 1, Day: 1}))
	require.NoError(t, repo.SetBirthday(ctx, testGuild, engine.StoredBirthday{UserID: 3, Month: 1, Day: 15, Timezone: "Europe/Paris"}))

	rows, err := repo.FetchBirthdays(ctx, testGuild)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, uint64(2), rows[0].UserID)
	assert.Equal(t, uint64(3), rows[1].UserID)
	assert.Equal(t, uint64(1), rows[2].UserID)
	assert.Equal(t, "Europe/Paris", rows[1].Timezone)
	assert.Empty(t, rows[0].Timezone)
}

func TestFetchBirthdays_GuildIsolation(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetBirthday(ctx, testGuild, engine.StoredBirthday{UserID: 1, Month: 6, Day: 15}))
	require.NoError(t, repo.SetBirthday(ctx, 777, engine.StoredBirthday{UserID: 2, Month: 6, Day: 15}))

	rows, err := repo.FetchBirthdays(ctx, testGuild)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(1), rows[0].UserID)
}

func TestSetBirthday_UpsertReplacesDate(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetBirthday(ctx, testGuild, engine.StoredBirthday{UserID: 1, Month: 6, Day: 15}))
	require.NoError(t, repo.SetBirthday(ctx, testGuild, engine.StoredBirthday{UserID: 1, Month: 2, Day: 29}))

	b, ok, err := repo.Birthday(ctx, testGuild, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, b.Month)
	assert.Equal(t, 29, b.Day)
}

func TestSetBirthday_RejectsInvalidDate(t *testing.T) {
	repo := openRepo(t)

	err := repo.SetBirthday(context.Background(), testGuild, engine.StoredBirthday{UserID: 1, Month: 2, Day: 30})
	assert.ErrorIs(t, err, engine.ErrInvalidRecord)
}

func TestBirthday_AbsentRow(t *testing.T) {
	repo := openRepo(t)

	_, ok, err := repo.Birthday(context.Background(), testGuild, 12345)
	require.NoError(t, err)
	assert.False(t, ok, "a missing row is not an error")
}

func TestRemoveBirthday(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetBirthday(ctx, testGuild, engine.StoredBirthday{UserID: 1, Month: 6, Day: 15}))

	removed, err := repo.RemoveBirthday(ctx, testGuild, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveBirthday(ctx, testGuild, 1)
	require.NoError(t, err)
	assert.False(t, removed, "second removal should report nothing deleted")
}

func TestImportBirthdays_Transactional(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	// One invalid row poisons the whole batch; nothing must land.
	batch := []engine.StoredBirthday{
		{UserID: 1, Month: 3, Day: 1},
		{UserID: 2, Month: 13, Day: 1},
	}
	err := repo.ImportBirthdays(ctx, testGuild, batch)
	require.ErrorIs(t, err, engine.ErrInvalidRecord)

	rows, err := repo.FetchBirthdays(ctx, testGuild)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// A clean batch lands completely.
	require.NoError(t, repo.ImportBirthdays(ctx, testGuild, []engine.StoredBirthday{
		{UserID: 1, Month: 3, Day: 1},
		{UserID: 2, Month: 4, Day: 2},
	}))
	rows, err = repo.FetchBirthdays(ctx, testGuild)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
