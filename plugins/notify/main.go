// Package main provides a desktop notification plugin.
// It posts a notification whenever a jutsu is matched.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Jutsu   string          `json:"jutsu"`
	Display string          `json:"display"`
	Element string          `json:"element"`
	Seals   []string        `json:"seals"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "jutsu_matched":
		if err := notify(req); err != nil {
			writeErrorResponse(fmt.Sprintf("notification failed: %v", err))
			return
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	writeSuccessResponse()
}

// notify posts a desktop notification naming the matched jutsu.
func notify(req Request) error {
	title := req.Display
	if title == "" {
		title = req.Jutsu
	}

	body := "Seals: " + strings.Join(req.Seals, " ")
	if req.Element != "" {
		body = req.Element + " | " + body
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", title, body)
	}

	return cmd.Run()
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

func writeErrorResponse(msg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: msg})
}
