// Package ui holds the transient notification line shown under the playback console.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tvplay-cli/tvplay/style"
)

// NotificationTTL is how long a notification stays on screen.
const NotificationTTL = 3 * time.Second

// Model holds the notification currently displayed, if any.
type Model struct {
	notification string
	seq          int
}

// NotificationMsg replaces the displayed notification.
type NotificationMsg string

// ClearNotificationMsg clears the notification it was scheduled for.
type ClearNotificationMsg struct {
	seq int
}

// Notify returns a tea.Cmd displaying text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg(text)
	}
}

func clearAfter(seq int) tea.Cmd {
	return tea.Tick(NotificationTTL, func(time.Time) tea.Msg {
		return ClearNotificationMsg{seq: seq}
	})
}

// Update processes notification messages. A clear scheduled for an older
// notification leaves a newer one in place.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.seq++
		m.notification = string(msg)
		return clearAfter(m.seq)
	case ClearNotificationMsg:
		if msg.seq == m.seq {
			m.notification = ""
		}
	}
	return nil
}

// Current returns the displayed notification, empty when none.
func (m *Model) Current() string {
	return m.notification
}

// View appends the notification to the last line of mainContent.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	lines := strings.Split(mainContent, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
