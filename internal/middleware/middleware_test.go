package middleware

import (
	"achievify/internal/metrics"
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStorage(client, "limiter:"), s
}

func TestRedisStorage_SetGetDelete(t *testing.T) {
	store, mr := newRedisStorage(t)

	got, err := store.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Set("1.2.3.4", []byte("hits"), time.Minute))
	assert.True(t, mr.Exists("limiter:1.2.3.4"))

	got, err = store.Get("1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, []byte("hits"), got)

	require.NoError(t, store.Delete("1.2.3.4"))
	assert.False(t, mr.Exists("limiter:1.2.3.4"))
}

func TestRedisStorage_Expiry(t *testing.T) {
	store, mr := newRedisStorage(t)
	require.NoError(t, store.Set("k", []byte("v"), time.Second))

	mr.FastForward(2 * time.Second)

	got, err := store.Get("k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStorage_ResetKeepsForeignKeys(t *testing.T) {
	store, mr := newRedisStorage(t)
	require.NoError(t, store.Set("a", []byte("1"), 0))
	require.NoError(t, store.Set("b", []byte("2"), 0))
	require.NoError(t, mr.Set("other:c", "3"))

	require.NoError(t, store.Reset())
	assert.False(t, mr.Exists("limiter:a"))
	assert.False(t, mr.Exists("limiter:b"))
	assert.True(t, mr.Exists("other:c"))
}

type fixedVerifier struct{}

func (fixedVerifier) VerifyToken(raw string) (int64, error) {
	if raw == "good" {
		return 42, nil
	}
	return 0, apperror.Unauthorized("Invalid token")
}

func newTestApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperror.Status(err)).JSON(fiber.Map{"message": apperror.Message(err)})
		},
	})
	app.Use(RequestLogger(logger.Nop(), metrics.New()))
	app.Use(Identity(fixedVerifier{}, logger.Nop()))
	for _, h := range handlers {
		app.Get("/", h)
	}
	return app
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestIdentity(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		id, ok := TokenUser(c)
		return c.JSON(fiber.Map{"id": id, "ok": ok})
	})

	cases := []struct {
		name   string
		header string
		status int
		ok     bool
	}{
		{"no token", "", 200, false},
		{"valid token", "Bearer good", 200, true},
		{"invalid token", "Bearer bad", 401, false},
		{"wrong scheme", "Basic good", 401, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.status == 200 {
				assert.Equal(t, tc.ok, decode(t, resp.Body)["ok"])
			}
		})
	}
}

func TestRequestLogger_RecoversPanic(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "Server error", decode(t, resp.Body)["message"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
