package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	statsRedis "github.com/sharetube/watchparty/internal/repository/stats/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	return AppConfig{
		Host:               "127.0.0.1",
		Port:               8080,
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"*"},
		DeliveryBuffer:     2,
		DeliveryTimeout:    5 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "debug level", mutate: func(c *AppConfig) { c.LogLevel = "DEBUG" }},
		{name: "bad level", mutate: func(c *AppConfig) { c.LogLevel = "loud" }, wantErr: true},
		{name: "zero port", mutate: func(c *AppConfig) { c.Port = 0 }, wantErr: true},
		{name: "no origins", mutate: func(c *AppConfig) { c.CORSAllowedOrigins = nil }, wantErr: true},
		{name: "zero buffer", mutate: func(c *AppConfig) { c.DeliveryBuffer = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *AppConfig) { c.DeliveryTimeout = -time.Second }, wantErr: true},
		{name: "zero delivery timeout", mutate: func(c *AppConfig) { c.DeliveryTimeout = 0 }, wantErr: true},
		{name: "redis bad port", mutate: func(c *AppConfig) { c.RedisHost = "localhost"; c.RedisPort = 0 }, wantErr: true},
		{name: "redis disabled ignores port", mutate: func(c *AppConfig) { c.RedisPort = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewHandlerWithRedisStats(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer rc.Close()

	cfg := validConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewHandler(&cfg, statsRedis.NewRepo(rc), logger))
	defer srv.Close()

	body, err := json.Marshal(map[string]any{"player_id": "a", "player_name": "A"})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/v1/rooms", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, "1", s.HGet("watchparty:stats", "rooms_created"))

	resp, err = http.Get(srv.URL + "/api/v1/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var statsEnv struct {
		Data map[string]int64 `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statsEnv))
	assert.Equal(t, int64(1), statsEnv.Data["rooms_created"])
	assert.Equal(t, int64(1), statsEnv.Data["rooms_active"])
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.DeliveryBuffer = 0

	assert.Error(t, Run(context.Background(), &cfg))
}

func TestRunFailsWithoutRedis(t *testing.T) {
	s := miniredis.RunT(t)
	host := s.Host()
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)
	s.Close()

	cfg := validConfig()
	cfg.RedisHost = host
	cfg.RedisPort = port

	assert.Error(t, Run(context.Background(), &cfg))
}

func TestRunGracefulShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := validConfig()
	cfg.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, &cfg)
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/healthz", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
