package mpv

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

type ipcCommand struct {
	Command []any `json:"command"`
}

type ipcResponse struct {
	Data  any    `json:"data"`
	Error string `json:"error"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
	readBufSize  = 4096
)

// Client sends JSON-IPC commands to an mpv socket, one connection per command.
type Client struct {
	socket string
	mu     sync.Mutex
}

func NewClient(socket string) *Client {
	return &Client{socket: socket}
}

// Command runs an mpv command, retrying transient connection failures.
func (c *Client) Command(args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		data, err := roundTrip(c.socket, args)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command %v failed after %d attempts: %w", args[0], maxRetries, lastErr)
}

// Set assigns an mpv property.
func (c *Client) Set(property string, value any) error {
	_, err := c.Command("set_property", property, value)
	return err
}

// Float reads a numeric mpv property.
func (c *Client) Float(property string) (float64, error) {
	data, err := c.Command("get_property", property)
	if err != nil {
		return 0, err
	}

	v, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected a number, got %T", property, data)
	}
	return v, nil
}

func roundTrip(socket string, args []any) (any, error) {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: args})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv reads newline-delimited JSON.
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	buf := make([]byte, readBufSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return decodeResponse(buf[:n])
}

func decodeResponse(raw []byte) (any, error) {
	var resp ipcResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if resp.Error != "" && resp.Error != "success" {
		return nil, fmt.Errorf("mpv error: %s", resp.Error)
	}
	return resp.Data, nil
}
