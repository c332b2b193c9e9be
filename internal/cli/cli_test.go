package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModules = `
user:
  profile:
    data:
      name: ""
    fetch: profile
feed:
  data:
    items: []
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "vuet", cmd.Use)

	for _, name := range []string{"paths", "state", "watch"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	modules := writeFile(t, "modules.yaml", testModules)
	_, err := execute(t, "paths", "--modules", modules, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestPathsRequiresModules(t *testing.T) {
	_, err := execute(t, "paths")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--modules")
}

func TestPathsText(t *testing.T) {
	modules := writeFile(t, "modules.yaml", testModules)
	out, err := execute(t, "paths", "--modules", modules)
	require.NoError(t, err)
	assert.Equal(t, "feed\nuser/profile\n", out)
}

func TestPathsJSONWithConfig(t *testing.T) {
	modules := writeFile(t, "modules.yaml", testModules)
	settings := writeFile(t, "vuet.yaml", "path_join: \".\"\n")

	out, err := execute(t, "paths", "--modules", modules, "--config", settings, "--format", "json")
	require.NoError(t, err)

	var paths []string
	require.NoError(t, json.Unmarshal([]byte(out), &paths))
	assert.Equal(t, []string{"feed", "user.profile"}, paths)
}

func TestStateSnapshot(t *testing.T) {
	modules := writeFile(t, "modules.yaml", testModules)
	settings := writeFile(t, "vuet.yaml", "defaults:\n  loading: false\n")

	out, err := execute(t, "state", "--modules", modules, "--config", settings, "--format", "json")
	require.NoError(t, err)

	var snapshot map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))
	assert.Equal(t, map[string]any{"loading": false, "name": ""}, snapshot["user/profile"])
	assert.Equal(t, map[string]any{"loading": false, "items": []any{}}, snapshot["feed"])
}

func TestStateText(t *testing.T) {
	modules := writeFile(t, "modules.yaml", testModules)
	out, err := execute(t, "state", "--modules", modules)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "feed\t{\"items\":[]}", lines[0])
	assert.Equal(t, "user/profile\t{\"name\":\"\"}", lines[1])
}

func TestStateSinglePath(t *testing.T) {
	modules := writeFile(t, "modules.yaml", testModules)
	out, err := execute(t, "state", "user/profile", "--modules", modules)
	require.NoError(t, err)

	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, map[string]any{"name": ""}, state)
}

func TestStateRejectsBadDeclaration(t *testing.T) {
	modules := writeFile(t, "modules.yaml", "user: 3\n")
	_, err := execute(t, "state", "--modules", modules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a mapping")
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchReloadsOnWrite(t *testing.T) {
	modules := writeFile(t, "modules.yaml", testModules)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &lockedBuffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&lockedBuffer{})
	cmd.SetArgs([]string{"watch", "--modules", modules})

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "user/profile")
	}, 5*time.Second, 20*time.Millisecond)

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(modules, []byte(testModules+"settings:\n  data:\n    theme: dark\n"), 0o600))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "settings\t{\"theme\":\"dark\"}")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRequiresModules(t *testing.T) {
	_, err := execute(t, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--modules")
}
