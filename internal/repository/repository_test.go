// Package repository 的集成测试，依赖 Docker 启动 PostgreSQL
package repository

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/retrieval"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "garyuser",
				"POSTGRES_PASSWORD": "garypass",
				"POSTGRES_DB":       "garybotdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Printf("postgres container unavailable, repository tests skipped: %v", err)
		os.Exit(m.Run())
	}

	host, err := container.Host(ctx)
	if err != nil || host == "" || host == "null" {
		host = "localhost"
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("failed to get mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://garyuser:garypass@%s:%s/garybotdb?sslmode=disable", host, port.Port())
	testDB, err = InitDB(dsn, nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	if err := Migrate(testDB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	code := m.Run()

	if sqlDB, err := testDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func requireDB(t *testing.T) *Repositories {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres not available")
	}
	require.NoError(t, testDB.Exec("TRUNCATE TABLE episodes, chat_history RESTART IDENTITY").Error)
	return NewRepositories(testDB)
}

func seedEpisodes() []model.Episode {
	return []model.Episode{
		{Season: model.IntPtr(1), Number: model.IntPtr(2), Title: model.StrPtr("Sandy's Rocket"),
			Summary: model.StrPtr("Gary finds Sandy's old rocket buried in the yard."), Characters: model.StrPtr("Gary, Sandy")},
		{Code: model.StrPtr("2b"), Title: model.StrPtr("Gary Takes a Bath"),
			Summary: model.StrPtr("SpongeBob tries to bathe Gary."), Characters: model.StrPtr("SpongeBob, Gary")},
		{Title: model.StrPtr("Party Pooper Pants"), Summary: model.StrPtr("SpongeBob throws a PARTY."),
			Characters: model.StrPtr("SpongeBob")},
	}
}

func TestEpisodeRepository_SearchMatchesMemoryStore(t *testing.T) {
	repos := requireDB(t)
	ctx := context.Background()
	require.NoError(t, repos.Episode.ReplaceAll(ctx, seedEpisodes()))

	stored, err := repos.Episode.Search(ctx, []string{"sandy", "party", "bath"}, 10)
	require.NoError(t, err)
	memory := retrieval.NewMemoryStore(stored...)

	for _, tokens := range [][]string{{"gary"}, {"party"}, {"art"}, {"rocket", "bath"}, {"plankton"}} {
		got, err := repos.Episode.Search(ctx, tokens, 10)
		require.NoError(t, err)
		want, _ := memory.Search(ctx, tokens, 10)
		assert.Equal(t, want, got, "tokens %v", tokens)
	}
}

func TestEpisodeRepository_SearchLimitAndIdempotence(t *testing.T) {
	repos := requireDB(t)
	ctx := context.Background()
	require.NoError(t, repos.Episode.ReplaceAll(ctx, seedEpisodes()))

	first, err := repos.Episode.Search(ctx, []string{"spongebob"}, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 2, first[0].ID)

	second, err := repos.Episode.Search(ctx, []string{"spongebob"}, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	none, err := repos.Episode.Search(ctx, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEpisodeRepository_ReplaceAllResetsIdentity(t *testing.T) {
	repos := requireDB(t)
	ctx := context.Background()
	require.NoError(t, repos.Episode.ReplaceAll(ctx, seedEpisodes()))
	require.NoError(t, repos.Episode.ReplaceAll(ctx, seedEpisodes()[:1]))

	count, err := repos.Episode.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := repos.Episode.Search(ctx, []string{"rocket"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestEpisodeRepository_Enrichment(t *testing.T) {
	repos := requireDB(t)
	ctx := context.Background()
	require.NoError(t, repos.Episode.ReplaceAll(ctx, seedEpisodes()))

	pending, err := repos.Episode.ListUnenriched(ctx, "gary")
	require.NoError(t, err)
	require.Len(t, pending, 2)

	err = repos.Episode.UpdateEnrichment(ctx, pending[0].ID, model.Enrichment{
		VisualSummary:       "A pink snail shell glowing under the moon.",
		KeyCharacters:       []string{"Gary", "Sandy"},
		KeyObjectsLocations: []string{"rocket", "yard"},
	})
	require.NoError(t, err)

	enriched, err := repos.Episode.CountEnriched(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), enriched)

	got, err := repos.Episode.Search(ctx, []string{"yard"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gary, Sandy", model.Str(got[0].KeyCharacters))

	assert.ErrorIs(t, repos.Episode.UpdateEnrichment(ctx, 999, model.Enrichment{VisualSummary: "x"}), ErrNotFound)
}

func TestChatHistoryRepository(t *testing.T) {
	repos := requireDB(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repos.ChatHistory.Append(ctx, "s1", model.RoleUser, fmt.Sprintf("msg %d", i)))
	}
	require.NoError(t, repos.ChatHistory.Append(ctx, "s2", model.RoleAssistant, "other"))

	recent, err := repos.ChatHistory.Recent(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "msg 3", recent[0].Content)
	assert.Equal(t, "msg 5", recent[2].Content)

	deleted, err := repos.ChatHistory.DeleteSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)

	recent, err = repos.ChatHistory.Recent(ctx, "s1", 3)
	require.NoError(t, err)
	assert.Empty(t, recent)

	other, err := repos.ChatHistory.Recent(ctx, "s2", 10)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
