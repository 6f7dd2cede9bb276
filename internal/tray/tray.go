// Package tray provides the system tray interface for the CVJutsu seal recognition system.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onReset    func()
	onSettings func()
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuLastJutsu *systray.MenuItem
	menuSequence  *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback called when recognition is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnReset sets the callback called when the reset menu item is clicked.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnSettings sets the callback called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// SetEnabled sets the toggle state shown when the menu is built.
// Call before Run to restore a persisted state.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("CVJutsu")
	systray.SetTooltip("CVJutsu Seal Recognition")

	t.mu.RLock()
	toggleTitle := "● Enabled"
	if !t.enabled {
		toggleTitle = "○ Disabled"
	}
	t.mu.RUnlock()

	t.menuToggle = systray.AddMenuItem(toggleTitle, "Toggle seal recognition")
	systray.AddSeparator()

	t.menuLastJutsu = systray.AddMenuItem("Last: none", "Last matched jutsu")
	t.menuLastJutsu.Disable()
	t.menuSequence = systray.AddMenuItem("Seals: -", "Confirmed seal sequence")
	t.menuSequence.Disable()
	systray.AddSeparator()

	menuReset := systray.AddMenuItem("Reset Sequence", "Clear the in-flight seal sequence")
	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit CVJutsu")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Disabled")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	t.SetSequence(nil)
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastJutsu updates the last matched jutsu display in the menu.
func (t *Tray) SetLastJutsu(display string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastJutsu != nil {
		if display == "" {
			t.menuLastJutsu.SetTitle("Last: none")
		} else {
			t.menuLastJutsu.SetTitle("Last: " + display)
		}
	}
}

// SetSequence updates the confirmed seal sequence display in the menu.
func (t *Tray) SetSequence(seals []string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuSequence == nil {
		return
	}
	if len(seals) == 0 {
		t.menuSequence.SetTitle("Seals: -")
		return
	}

	title := "Seals: " + seals[0]
	for _, s := range seals[1:] {
		title += " " + s
	}
	t.menuSequence.SetTitle(title)
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
