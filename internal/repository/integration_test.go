//go:build integration

package repository

import (
	"achievify/internal/models"
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *sqlx.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=achievify_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start postgres: %v", err)
	}
	_ = resource.Expire(120)

	dsn := fmt.Sprintf("host=localhost port=%s user=postgres password=postgres dbname=achievify_test sslmode=disable",
		resource.GetPort("5432/tcp"))
	pool.MaxWait = 60 * time.Second
	if err := pool.Retry(func() error {
		db, err := sqlx.Open("postgres", dsn)
		if err != nil {
			return err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return err
		}
		testDB = db
		return nil
	}); err != nil {
		log.Fatalf("Could not connect to postgres: %v", err)
	}

	if err := Migrate(context.Background(), testDB.DB); err != nil {
		log.Fatalf("Could not migrate: %v", err)
	}

	code := m.Run()

	testDB.Close()
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge postgres: %v", err)
	}
	os.Exit(code)
}

func newUser(t *testing.T, store *PostgresStore, name string) int64 {
	t.Helper()
	u, err := store.CreateUser(context.Background(), &models.User{
		FullName: name, Username: name, Email: name + "@example.com", PasswordHash: "x",
	})
	require.NoError(t, err)
	return u.ID
}

func TestIntegration_UserUniqueness(t *testing.T) {
	store := NewPostgresStore(testDB)
	newUser(t, store, "int_alice")

	_, err := store.CreateUser(context.Background(), &models.User{
		FullName: "x", Username: "int_alice", Email: "fresh@example.com", PasswordHash: "x",
	})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	_, err = store.CreateUser(context.Background(), &models.User{
		FullName: "x", Username: "int_fresh", Email: "int_alice@example.com", PasswordHash: "x",
	})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestIntegration_TodoOwnership(t *testing.T) {
	store := NewPostgresStore(testDB)
	ctx := context.Background()
	alice := newUser(t, store, "int_todo_a")
	bob := newUser(t, store, "int_todo_b")

	first, err := store.CreateTodo(ctx, alice, "first")
	require.NoError(t, err)
	second, err := store.CreateTodo(ctx, alice, "second")
	require.NoError(t, err)

	list, err := store.ListTodos(ctx, alice, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	title := "stolen"
	_, err = store.UpdateTodo(ctx, first.ID, bob, models.TodoPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteTodo(ctx, first.ID, bob), ErrNotFound)

	done := true
	updated, err := store.UpdateTodo(ctx, first.ID, alice, models.TodoPatch{Done: &done})
	require.NoError(t, err)
	assert.True(t, updated.Done)
	assert.Equal(t, "first", updated.Title)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = store.CreateTodo(ctx, 1<<40, "orphan")
	assert.ErrorIs(t, err, ErrUnknownOwner)
}

func TestIntegration_PlannerUpsertReplaces(t *testing.T) {
	store := NewPostgresStore(testDB)
	ctx := context.Background()
	uid := newUser(t, store, "int_planner")

	grid := models.EmptyPlannerGrid()
	grid[0][0].Text = "a"
	_, err := store.UpsertPlannerWeek(ctx, uid, "2025-W10", grid)
	require.NoError(t, err)

	replacement := models.EmptyPlannerGrid()
	replacement[2][2].Text = "z"
	_, err = store.UpsertPlannerWeek(ctx, uid, "2025-W10", replacement)
	require.NoError(t, err)

	got, err := store.GetPlannerWeek(ctx, uid, "2025-W10")
	require.NoError(t, err)
	assert.Equal(t, replacement, got.Data)
}

func TestIntegration_WallDeleteReturnsPath(t *testing.T) {
	store := NewPostgresStore(testDB)
	ctx := context.Background()
	uid := newUser(t, store, "int_wall")
	path, mime := "uploads/wall/1_a.png", "image/png"

	item, err := store.CreateWallItem(ctx, models.WallItem{UserID: uid, Kind: models.WallKindImage, FilePath: &path, Mime: &mime})
	require.NoError(t, err)

	got, err := store.DeleteWallItem(ctx, item.ID, uid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, path, *got)

	_, err = store.DeleteWallItem(ctx, item.ID, uid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegration_ResetAndMigrate(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, Reset(ctx, testDB.DB))

	var exists bool
	require.NoError(t, testDB.Get(&exists, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'todos')`))
	assert.False(t, exists)

	require.NoError(t, Migrate(ctx, testDB.DB))
	require.NoError(t, testDB.Get(&exists, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'todos')`))
	assert.True(t, exists)
}
