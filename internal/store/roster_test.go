package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/guild-birthday/internal/engine"
	"github.com/tartampluch/guild-birthday/internal/roster"
)

func TestListGuilds(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	guilds, err := repo.ListGuilds(ctx)
	require.NoError(t, err)
	assert.Empty(t, guilds, "a fresh store has no guilds")

	require.NoError(t, repo.SetBirthday(ctx, 20, engine.StoredBirthday{UserID: 1, Month: 6, Day: 15}))
	require.NoError(t, repo.SetBirthday(ctx, 10, engine.StoredBirthday{UserID: 2, Month: 6, Day: 15}))
	require.NoError(t, repo.SetBirthday(ctx, 10, engine.StoredBirthday{UserID: 3, Month: 7, Day: 1}))

	guilds, err = repo.ListGuilds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 20}, guilds, "guilds come back deduplicated and ordered")
}

func TestSyncRoster_ReplacesSnapshot(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	first := []roster.Member{
		{UserID: 1, Username: "alice", Discriminator: "0001"},
		{UserID: 2, Username: "bob", Discriminator: "0002", Nickname: "Bobby"},
	}
	require.NoError(t, repo.SyncRoster(ctx, testGuild, "Crew", first))

	name, err := repo.GuildName(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, "Crew", name)

	members, err := repo.Members(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, first, members)

	// A later sync fully replaces the previous snapshot: bob left, carol
	// joined, the guild was renamed.
	second := []roster.Member{
		{UserID: 1, Username: "alice", Discriminator: "0001"},
		{UserID: 3, Username: "carol", Discriminator: "0003"},
	}
	require.NoError(t, repo.SyncRoster(ctx, testGuild, "New Crew", second))

	name, err = repo.GuildName(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, "New Crew", name)

	members, err = repo.Members(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, second, members)
}

func TestGuildName_UnsyncedGuildIsEmptyNotError(t *testing.T) {
	repo := openRepo(t)

	name, err := repo.GuildName(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestMembers_GuildIsolation(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SyncRoster(ctx, testGuild, "Crew", []roster.Member{
		{UserID: 1, Username: "alice", Discriminator: "0001"},
	}))
	require.NoError(t, repo.SyncRoster(ctx, 777, "Other", []roster.Member{
		{UserID: 2, Username: "bob", Discriminator: "0002"},
	}))

	members, err := repo.Members(ctx, testGuild)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Username)
}
