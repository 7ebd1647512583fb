package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const emptySettingsYAML = `
settings:
  tracked_file_root: /data/tracked
  staging_root: /data/staging
  database_dsn: "user:pass@tcp(127.0.0.1:0)/asap"
  worker_concurrency: 2
  metrics_enabled: false
contacts: {}
`

func TestRunCompletesAPassWithNoConfiguredContacts(t *testing.T) {
	origSettings, origBindings := settingsPath, bindingsPath
	defer func() { settingsPath, bindingsPath = origSettings, origBindings }()

	settingsPath = writeTempFile(t, "settings.yaml", emptySettingsYAML)
	bindingsPath = writeTempFile(t, "carriers.toml", "")

	err := run(context.Background())
	assert.NoError(t, err)
}

func TestRunPropagatesConfigLoadErrors(t *testing.T) {
	origSettings, origBindings := settingsPath, bindingsPath
	defer func() { settingsPath, bindingsPath = origSettings, origBindings }()

	settingsPath = filepath.Join(t.TempDir(), "missing.yaml")
	bindingsPath = writeTempFile(t, "carriers.toml", "")

	err := run(context.Background())
	assert.ErrorContains(t, err, "docxmitd")
}

func TestRunPropagatesUnknownContactBindingErrors(t *testing.T) {
	origSettings, origBindings := settingsPath, bindingsPath
	defer func() { settingsPath, bindingsPath = origSettings, origBindings }()

	settingsPath = writeTempFile(t, "settings.yaml", emptySettingsYAML)
	bindingsPath = writeTempFile(t, "carriers.toml", "[contact.ghost]\nhook = \"x\"\n")

	err := run(context.Background())
	assert.ErrorContains(t, err, "unknown contact")
}
