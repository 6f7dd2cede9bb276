package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// scriptBundle writes a shell-script plugin bundle and returns the Plugin
// pointing at it.
func scriptBundle(t *testing.T, name, script string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script plugins are not runnable on Windows")
	}

	dir := t.TempDir()
	exe := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write plugin script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    []string{"jutsu_matched"},
		},
		Path:       dir,
		Executable: exe,
	}
}

// matchRequest builds the request fired when the named jutsu completes.
func matchRequest(jutsu, display string, seals ...string) *Request {
	return &Request{
		Action:  "jutsu_matched",
		Jutsu:   jutsu,
		Display: display,
		Seals:   seals,
	}
}

func TestExecutor_Execute(t *testing.T) {
	p := scriptBundle(t, "sparks", `echo '{"success":true,"data":{"effect":"lightning"}}'`)

	exec := NewExecutor(5 * time.Second)
	resp, err := exec.Execute(p, matchRequest("chidori", "Chidori", "ushi", "tori", "hitsuji"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.Error != "" {
		t.Errorf("Error = %q, want empty", resp.Error)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
	if data["effect"] != "lightning" {
		t.Errorf("data.effect = %v, want lightning", data["effect"])
	}
}

func TestExecutor_RequestReachesStdin(t *testing.T) {
	p := scriptBundle(t, "echo", `INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"`)

	exec := NewExecutor(5 * time.Second)
	resp, err := exec.Execute(p, matchRequest("katon_goukakyu", "Fire Ball", "mi", "hitsuji", "tora"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var data struct {
		Received Request `json:"received"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to decode echoed request: %v", err)
	}

	if data.Received.Action != "jutsu_matched" {
		t.Errorf("action = %q, want jutsu_matched", data.Received.Action)
	}
	if data.Received.Jutsu != "katon_goukakyu" {
		t.Errorf("jutsu = %q, want katon_goukakyu", data.Received.Jutsu)
	}
	if data.Received.Display != "Fire Ball" {
		t.Errorf("display = %q, want Fire Ball", data.Received.Display)
	}
	if len(data.Received.Seals) != 3 || data.Received.Seals[0] != "mi" {
		t.Errorf("seals = %v, want [mi hitsuji tora]", data.Received.Seals)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	p := scriptBundle(t, "slow", `sleep 10
echo '{"success":true}'`)

	exec := NewExecutor(100 * time.Millisecond)
	_, err := exec.Execute(p, matchRequest("kage_bunshin", "Shadow Clone", "hitsuji"))

	if !errors.Is(err, ErrPluginTimeout) {
		t.Fatalf("Execute() error = %v, want ErrPluginTimeout", err)
	}
}

func TestExecutor_ErrorResponse(t *testing.T) {
	p := scriptBundle(t, "grumpy", `echo '{"success":false,"error":"chakra depleted"}'`)

	exec := NewExecutor(5 * time.Second)
	resp, err := exec.Execute(p, matchRequest("chidori", "Chidori", "ushi", "tori", "hitsuji"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if resp.Success {
		t.Error("Success = true, want false")
	}
	if resp.Error != "chakra depleted" {
		t.Errorf("Error = %q, want chakra depleted", resp.Error)
	}
}

func TestExecutor_InvalidOutput(t *testing.T) {
	p := scriptBundle(t, "garbled", `echo 'not valid json'`)

	exec := NewExecutor(5 * time.Second)
	if _, err := exec.Execute(p, matchRequest("chidori", "Chidori")); err == nil {
		t.Fatal("Execute() should fail on non-JSON plugin output")
	}
}

func TestExecutor_NonZeroExit(t *testing.T) {
	p := scriptBundle(t, "crash", `echo "seal misformed" >&2
exit 1`)

	exec := NewExecutor(5 * time.Second)
	if _, err := exec.Execute(p, matchRequest("chidori", "Chidori")); err == nil {
		t.Fatal("Execute() should fail on a non-zero exit")
	}
}
