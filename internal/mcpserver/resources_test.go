package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveEnv(t *testing.T) {
	t.Setenv("WINJECT_RATE_MOVE_HZ", "90")
	t.Setenv("WINJECT_INPUT_BACKEND", "ahk")

	env := liveEnv()
	assert.Equal(t, "90", env["WINJECT_RATE_MOVE_HZ"])
	assert.Equal(t, "ahk", env["WINJECT_INPUT_BACKEND"])
	assert.Contains(t, env, "WINJECT_LOG_LEVEL")
	assert.Contains(t, env, "WINJECT_SIM_DIR")
}

func TestReadEnvResource(t *testing.T) {
	t.Setenv("WINJECT_LOG_LEVEL", "debug")
	s, _ := newTestServer(t)

	res, err := s.readEnv(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var got struct {
		Name    string            `json:"name"`
		Backend map[string]any    `json:"backend"`
		Env     map[string]string `json:"env"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &got))
	assert.Equal(t, serverName, got.Name)
	assert.Equal(t, "record", got.Backend["name"])
	assert.Equal(t, "debug", got.Env["WINJECT_LOG_LEVEL"])
}
