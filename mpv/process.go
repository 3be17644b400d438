package mpv

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/tvplay-cli/tvplay/constant"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// Process is an idle mpv instance exposing a JSON IPC socket.
type Process struct {
	path   string
	socket string
	cmd    *exec.Cmd
	exited chan struct{}
}

// NewProcess prepares an mpv process using the binary at path, or mpv on
// $PATH when path is empty. Nothing runs until Start.
func NewProcess(path string) *Process {
	if path == "" {
		path = "mpv"
	}
	return &Process{path: path, exited: make(chan struct{})}
}

// Start launches mpv idle and waits for its socket. Files are loaded later
// through the element.
func (p *Process) Start() error {
	if p.socket == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		p.socket = filepath.Join(where.Temp(), fmt.Sprintf("%s-%x.sock", constant.App, randomBytes))
	}

	// Only the IPC plumbing is set here. The user's mpv.conf decides the rest.
	args := []string{
		"--idle=yes",
		"--keep-open=yes",
		"--pause",
		"--no-terminal",
		"--really-quiet",
		"--force-window=yes",
		fmt.Sprintf("--input-ipc-server=%s", p.socket),
		fmt.Sprintf("--title=%s", constant.App),
	}

	p.cmd = exec.Command(p.path, args...)
	p.cmd.SysProcAttr = sysProcAttr()
	p.cmd.Stdout = nil
	p.cmd.Stderr = nil
	p.cmd.Stdin = nil

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	p.exited = make(chan struct{})
	go func() {
		_ = p.cmd.Wait()
		close(p.exited)
	}()

	if err := p.waitForSocket(); err != nil {
		select {
		case <-p.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(p.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return nil
}

// Socket returns the IPC socket path, empty before Start.
func (p *Process) Socket() string {
	return p.socket
}

// Wait returns a channel closed when mpv exits.
func (p *Process) Wait() <-chan struct{} {
	return p.exited
}

func (p *Process) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-p.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", p.socket)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", p.socket, socketWaitRetries)
}

// Close asks mpv to quit, kills it when it does not, and removes the socket.
func (p *Process) Close() error {
	if p.cmd == nil {
		return nil
	}

	_, _ = NewClient(p.socket).Command("quit")

	select {
	case <-p.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(p.cmd)
		<-p.exited
	}

	_ = os.Remove(p.socket)
	return nil
}

// sanitizeMediaTarget validates that a URL is safe to hand to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// mpv would parse it as an option.
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "rtmp", "rtsp":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}
