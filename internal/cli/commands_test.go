package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig writes a config using the file backend under a temp dir and
// returns its path and the records directory.
func testConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	records := filepath.Join(dir, "records")
	path := filepath.Join(dir, "config.yaml")
	content := "backend: file\npath: " + records + "\ndebounce_wait: 10ms\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, records
}

type result struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, configPath string, stdin string, args ...string) result {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// jsonData runs a command with --format json and returns the response data.
func jsonData(t *testing.T, configPath string, args ...string) any {
	t.Helper()
	res := runCLI(t, configPath, "", append([]string{"--format", "json"}, args...)...)
	require.NoError(t, res.err, res.stdout)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestCLI_SettingsPersistAcrossRuns(t *testing.T) {
	cfg, _ := testConfig(t, "")

	res := runCLI(t, cfg, "", "settings", "theme", "dark")
	require.NoError(t, res.err)
	res = runCLI(t, cfg, "", "settings", "font-size", "20")
	require.NoError(t, res.err)

	res = runCLI(t, cfg, "", "get", "app-settings")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"theme":"dark"`)
	assert.Contains(t, res.stdout, `"font_size":20`)

	data := jsonData(t, cfg, "settings", "show").(map[string]any)
	assert.Equal(t, "dark", data["theme"])
	assert.Equal(t, "en", data["language"])
}

func TestCLI_RejectedInput(t *testing.T) {
	cfg, _ := testConfig(t, "")

	res := runCLI(t, cfg, "", "settings", "theme", "sepia")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error ["+ErrCodeInvalid+"]")

	res = runCLI(t, cfg, "", "settings", "font-size", "huge")
	assert.Equal(t, ExitFailure, GetExitCode(res.err))

	res = runCLI(t, cfg, "", "set", "scratch", "{not json")
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, ErrCodeInvalid)
}

func TestCLI_RawRecords(t *testing.T) {
	cfg, _ := testConfig(t, "")

	require.NoError(t, runCLI(t, cfg, "", "set", "scratch", `{"b":1,"a":"<x>"}`).err)

	res := runCLI(t, cfg, "", "get", "scratch")
	require.NoError(t, res.err)
	assert.Equal(t, `{"a":"<x>","b":1}`+"\n", res.stdout)

	assert.Equal(t, []any{"scratch"}, jsonData(t, cfg, "keys"))

	require.NoError(t, runCLI(t, cfg, "", "rm", "scratch").err)
	res = runCLI(t, cfg, "", "get", "scratch")
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, ErrCodeNotFound)
}

func TestCLI_SetWithExpire(t *testing.T) {
	cfg, _ := testConfig(t, "")

	require.NoError(t, runCLI(t, cfg, "", "set", "scratch", `1`, "--expire", "1h").err)

	data := jsonData(t, cfg, "get", "scratch").(map[string]any)
	assert.Equal(t, "scratch", data["key"])
	assert.EqualValues(t, 1, data["value"])
	assert.NotEmpty(t, data["expires_at"])
}

func TestCLI_SweepRemovesUnreadable(t *testing.T) {
	cfg, records := testConfig(t, "")
	require.NoError(t, runCLI(t, cfg, "", "set", "scratch", `1`).err)
	require.NoError(t, os.WriteFile(filepath.Join(records, "quill%3Ajunk.json"), []byte("not json"), 0o644))

	data := jsonData(t, cfg, "sweep").(map[string]any)
	assert.EqualValues(t, 1, data["removed"])
	assert.Equal(t, []any{"scratch"}, jsonData(t, cfg, "keys"))
}

func TestCLI_AuthLoginDoesNotPrintToken(t *testing.T) {
	cfg, _ := testConfig(t, "")

	res := runCLI(t, cfg, "", "auth", "login", "ana", "--token", "secret-token", "--expires-in", "1h")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "secret-token")

	data := jsonData(t, cfg, "auth", "show").(map[string]any)
	assert.Equal(t, true, data["authenticated"])
	assert.Equal(t, "ana", data["user_id"])
	assert.NotEmpty(t, data["session_id"])

	require.NoError(t, runCLI(t, cfg, "", "auth", "logout").err)
	data = jsonData(t, cfg, "auth", "show").(map[string]any)
	assert.Equal(t, false, data["authenticated"])
}

func TestCLI_NovelFlow(t *testing.T) {
	cfg, _ := testConfig(t, "")

	require.NoError(t, runCLI(t, cfg, "", "novel", "new", "The Long Road").err)

	res := runCLI(t, cfg, "", "novel", "write", "orphan text")
	assert.Equal(t, ExitFailure, GetExitCode(res.err), "no chapter selected yet")

	volumeID := strings.TrimSpace(runCLI(t, cfg, "", "novel", "add-volume", "Part One").stdout)
	require.NotEmpty(t, volumeID)
	require.NoError(t, runCLI(t, cfg, "", "novel", "add-chapter", "Arrival").err)

	res = runCLI(t, cfg, "It was late.\n", "novel", "write", "-")
	require.NoError(t, res.err)

	data := jsonData(t, cfg, "novel", "show").(map[string]any)
	assert.Equal(t, "The Long Road", data["title"])
	assert.Equal(t, volumeID, data["selected_volume"])
	assert.EqualValues(t, 3, data["words"])

	res = runCLI(t, cfg, "", "novel", "select-volume", "missing")
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, ErrCodeNotFound)
}

func TestCLI_ProfileCommands(t *testing.T) {
	cfg, _ := testConfig(t, "")

	require.NoError(t, runCLI(t, cfg, "", "profile", "set", "--user-id", "u1", "--nickname", "ana").err)
	require.NoError(t, runCLI(t, cfg, "", "profile", "chat", "c1").err)
	require.NoError(t, runCLI(t, cfg, "", "profile", "chat", "c2").err)
	require.NoError(t, runCLI(t, cfg, "", "profile", "quiz", "--correct").err)

	data := jsonData(t, cfg, "profile", "show").(map[string]any)
	assert.Equal(t, "ana", data["nickname"])
	assert.Equal(t, []any{"c2", "c1"}, data["recent_chats"])
	assert.EqualValues(t, 1, data["quiz"].(map[string]any)["correct"])

	res := runCLI(t, cfg, "", "profile", "nickname", "  ")
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
}

func TestCLI_LogoutKeepsSettings(t *testing.T) {
	cfg, _ := testConfig(t, "")
	require.NoError(t, runCLI(t, cfg, "", "settings", "sidebar").err)
	require.NoError(t, runCLI(t, cfg, "", "auth", "login", "ana", "--token", "t").err)
	require.NoError(t, runCLI(t, cfg, "", "profile", "chat", "c1").err)
	require.NoError(t, runCLI(t, cfg, "", "novel", "new", "Draft").err)

	require.NoError(t, runCLI(t, cfg, "", "logout").err)

	assert.Equal(t, []any{"app-settings"}, jsonData(t, cfg, "keys"))
}

func TestCLI_BadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: redis\n"), 0o644))

	res := runCLI(t, path, "", "keys")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, ErrCodeConfig)
}

func TestCLI_SQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "backend: sqlite\npath: " + filepath.Join(dir, "data", "quill.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, runCLI(t, path, "", "settings", "language", "pt-br").err)

	data := jsonData(t, path, "settings", "show").(map[string]any)
	assert.Equal(t, "pt-BR", data["language"])
}

func TestCLI_VerboseLogsToStderr(t *testing.T) {
	cfg, _ := testConfig(t, "")

	res := runCLI(t, cfg, "", "--verbose", "--format", "json", "keys")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "backend opened")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp), "logs must not corrupt JSON output")
}
