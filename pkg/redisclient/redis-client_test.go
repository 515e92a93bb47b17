package redisclient

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	s := miniredis.RunT(t)
	host := s.Host()
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)

	rc, err := NewRedisClient(context.Background(), &Config{
		Host: host,
		Port: port,
	})
	require.NoError(t, err)
	defer rc.Close()

	s.Close()
	_, err = NewRedisClient(context.Background(), &Config{
		Host: host,
		Port: port,
	})
	assert.Error(t, err)
}
