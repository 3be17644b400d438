package mpv

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tvplay-cli/tvplay/log"
)

// Notification is one asynchronous message from mpv: a property change or a player event.
type Notification struct {
	Event     string `json:"event"`
	Name      string `json:"name"`
	Data      any    `json:"data"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

// observed lists the properties the element mirrors.
var observed = []string{
	"time-pos",
	"duration",
	"pause",
	"paused-for-cache",
	"seeking",
	"eof-reached",
	"track-list",
	"demuxer-cache-state",
	"volume",
	"speed",
}

// Listener reads notifications from a persistent mpv connection.
type Listener struct {
	socket   string
	callback func(Notification)
	conn     net.Conn
	stopCh   chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	log      *log.Entry
}

func NewListener(socket string, callback func(Notification)) *Listener {
	return &Listener{
		socket:   socket,
		callback: callback,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		log:      log.Component("mpv"),
	}
}

// Start opens the connection, registers property observers on it and
// starts reading.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return nil
	}

	conn, err := net.Dial("unix", l.socket)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	// Observers are bound to the connection that registered them.
	for i, name := range observed {
		payload, _ := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	l.conn = conn
	l.running = true
	go l.readLoop()

	l.log.Infof("mpv event listener started on %s (observing: %s)", l.socket, strings.Join(observed, ", "))
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	l.conn.Close()
	l.mu.Unlock()

	<-l.done
}

func (l *Listener) readLoop() {
	defer close(l.done)

	buf := make([]byte, readBufSize)
	var pending string

	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		if err := l.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := l.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-l.stopCh:
			default:
				l.log.Warnf("event listener read error: %v", err)
			}
			return
		}

		pending = l.feed(pending + string(buf[:n]))
	}
}

// feed dispatches every complete line of data and returns the incomplete tail.
func (l *Listener) feed(data string) string {
	lines := strings.Split(data, "\n")
	for _, line := range lines[:len(lines)-1] {
		if n, ok := parseNotification(line); ok {
			l.callback(n)
		}
	}
	return lines[len(lines)-1]
}

// parseNotification decodes a line. Command replies carry no event and are skipped.
func parseNotification(line string) (Notification, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Notification{}, false
	}

	var n Notification
	if err := json.Unmarshal([]byte(line), &n); err != nil || n.Event == "" {
		return Notification{}, false
	}
	return n, true
}
