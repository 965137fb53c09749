package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamerig/internal/domain"
)

const validConfig = `{
  "pollIntervalMs": 500,
  "apps": [
    {
      "id": "nowinkey",
      "executablePath": "/opt/nowinkey/nowinkey",
      "processPattern": "nowinkey",
      "onSessionStart": {"kind": "start"},
      "onSessionEnd": {"kind": "stop"},
      "termination": {"policy": "auto", "gracefulTimeoutMs": 1000}
    },
    {
      "id": "obs",
      "processPattern": "obs64|obs",
      "onSessionStart": {"kind": "integration", "integrationAction": "enter-game-mode"},
      "onSessionEnd": {"kind": "integration", "integrationAction": "exit-game-mode"},
      "termination": {"policy": "graceful", "gracefulTimeoutMs": 5000},
      "integration": {
        "kind": "websocket",
        "host": "127.0.0.1",
        "port": 4455,
        "password": "env:TEST_OBS_PASSWORD",
        "actions": {
          "enter-game-mode": [
            {"name": "Scene.Current", "value": "Game"},
            {"name": "ReplayBuffer.Active", "value": true}
          ],
          "exit-game-mode": [
            {"name": "Scene.Current", "value": "Desktop"}
          ]
        }
      }
    }
  ],
  "games": [
    {"id": "apex", "displayName": "Apex Legends", "processPattern": "r5apex*", "managedApps": ["nowinkey", "obs"]},
    {"id": "console", "managedApps": ["obs"]}
  ]
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv("TEST_OBS_PASSWORD", "hunter2")

	doc, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, doc.PollInterval())

	apps := doc.ResolveApps()
	require.Len(t, apps, 2)

	nowinkey := apps["nowinkey"]
	assert.Equal(t, domain.ActionStart, nowinkey.OnSessionStart.Kind)
	assert.Equal(t, domain.PolicyAuto, nowinkey.Termination.Policy)
	assert.Equal(t, time.Second, nowinkey.Termination.GracefulTimeout)

	obs := apps["obs"]
	require.NotNil(t, obs.Integration)
	assert.Equal(t, domain.IntegrationWebSocket, obs.Integration.Kind)
	assert.Equal(t, "hunter2", obs.Integration.Password, "env: reference resolves at load time")
	assert.Equal(t, "enter-game-mode", obs.OnSessionStart.Integration)

	enter := obs.Integration.Actions["enter-game-mode"]
	require.Len(t, enter, 2)
	assert.Equal(t, domain.StringValue("Game"), enter[0].Value)
	assert.Equal(t, domain.BoolValue(true), enter[1].Value)
}

func TestLoad_GameResolution(t *testing.T) {
	doc, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	apex, err := doc.Game("apex")
	require.NoError(t, err)
	assert.Equal(t, "Apex Legends", apex.DisplayName)
	assert.False(t, apex.IsManual())

	console, err := doc.Game("console")
	require.NoError(t, err)
	assert.Equal(t, "console", console.DisplayName, "falls back to the id")
	assert.True(t, console.IsManual())

	_, err = doc.Game("ghost")
	assert.Error(t, err)
}

func TestValidate_RejectsBrokenConfigs(t *testing.T) {
	base := func() *Document {
		var doc Document
		require.NoError(t, json.Unmarshal([]byte(validConfig), &doc))
		return &doc
	}

	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr string
	}{
		{
			"duplicate app id",
			func(d *Document) { d.Apps = append(d.Apps, d.Apps[0]) },
			"duplicate app id",
		},
		{
			"unknown action kind",
			func(d *Document) { d.Apps[0].OnSessionStart.Kind = "restart" },
			"unknown action kind",
		},
		{
			"start action without executable",
			func(d *Document) { d.Apps[0].ExecutablePath = "" },
			"no executablePath",
		},
		{
			"integration action not defined",
			func(d *Document) { d.Apps[1].OnSessionStart.IntegrationAction = "no-such-action" },
			"undefined integration action",
		},
		{
			"graceful policy needs a timeout",
			func(d *Document) { d.Apps[0].Termination.GracefulTimeoutMs = 0 },
			"requires gracefulTimeoutMs",
		},
		{
			"websocket integration needs host and port",
			func(d *Document) { d.Apps[1].Integration.Port = 0 },
			"requires host and port",
		},
		{
			"unknown integration kind",
			func(d *Document) { d.Apps[1].Integration.Kind = "grpc" },
			"unknown integration kind",
		},
		{
			"assignment value must be a scalar",
			func(d *Document) {
				d.Apps[1].Integration.Actions["enter-game-mode"][0].Value = json.RawMessage(`{"x":1}`)
			},
			"must be a number, bool, or string",
		},
		{
			"game referencing unknown app",
			func(d *Document) { d.Games[0].ManagedApps = append(d.Games[0].ManagedApps, "ghost") },
			"unknown app",
		},
		{
			"duplicate game id",
			func(d *Document) { d.Games = append(d.Games, d.Games[0]) },
			"duplicate game id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := base()
			tt.mutate(doc)
			err := doc.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ForcePolicyNeedsNoTimeout(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(validConfig), &doc))
	doc.Apps[0].Termination = TerminationConfig{Policy: "force"}

	assert.NoError(t, doc.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_MixerIntegrationNeedsLibraryPath(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(validConfig), &doc))
	doc.Apps[1].Integration.Kind = "mixer"
	doc.Apps[1].Integration.LibraryPath = ""

	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires libraryPath")
}
