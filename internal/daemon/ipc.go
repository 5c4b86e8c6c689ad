package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
)

// Command is a single request from the CLI to the daemon, one JSON object
// per line over the unix socket.
type Command struct {
	Action string `json:"action"` // status, stop, reindex, add, remove
	Path   string `json:"path,omitempty"`
}

// Response is the daemon's reply to a Command.
type Response struct {
	Status  string `json:"status"` // ok, error
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// DefaultSocketPath returns the per-user socket path.
func DefaultSocketPath() string {
	return fmt.Sprintf("/tmp/rpyscope-%d.sock", os.Getuid())
}

// IPCServer accepts CLI commands over a unix socket.
type IPCServer struct {
	socketPath string
	listener   net.Listener
	daemon     *Daemon
}

// NewIPCServer creates the socket, removing any stale one first.
func NewIPCServer(socketPath string, daemon *Daemon) (*IPCServer, error) {
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listening on socket: %w", err)
	}

	return &IPCServer{
		socketPath: socketPath,
		listener:   listener,
		daemon:     daemon,
	}, nil
}

// Close shuts down the IPC server and removes the socket.
func (s *IPCServer) Close() error {
	os.Remove(s.socketPath)
	return s.listener.Close()
}

// Serve accepts connections until the context is cancelled.
func (s *IPCServer) Serve(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}
		go s.handleConnection(conn)
	}
}

func (s *IPCServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return
	}

	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		s.sendResponse(conn, Response{Status: "error", Message: "invalid command"})
		return
	}

	s.sendResponse(conn, s.handleCommand(cmd))
}

func (s *IPCServer) handleCommand(cmd Command) Response {
	// Actions that need a path validate it up front.
	switch cmd.Action {
	case "reindex", "add", "remove":
		if cmd.Path == "" {
			return Response{Status: "error", Message: "path required"}
		}
	}

	switch cmd.Action {
	case "status":
		return Response{Status: "ok", Data: s.daemon.Status()}

	case "stop":
		s.daemon.Stop()
		return Response{Status: "ok", Message: "daemon stopping"}

	case "reindex":
		if err := s.daemon.TriggerReindex(cmd.Path); err != nil {
			return Response{Status: "error", Message: err.Error()}
		}
		return Response{Status: "ok", Message: "reindex queued"}

	case "add":
		if err := s.daemon.AddProject(cmd.Path); err != nil {
			return Response{Status: "error", Message: err.Error()}
		}
		return Response{Status: "ok", Message: "project added"}

	case "remove":
		if err := s.daemon.RemoveProject(cmd.Path); err != nil {
			return Response{Status: "error", Message: err.Error()}
		}
		return Response{Status: "ok", Message: "project removed"}

	default:
		return Response{Status: "error", Message: "unknown action"}
	}
}

func (s *IPCServer) sendResponse(conn net.Conn, resp Response) {
	data, _ := json.Marshal(resp)
	conn.Write(append(data, '\n'))
}

// IPCClient is the CLI side of the socket protocol.
type IPCClient struct {
	socketPath string
}

// NewIPCClient creates a client for the given socket path.
func NewIPCClient(socketPath string) *IPCClient {
	return &IPCClient{socketPath: socketPath}
}

// Send delivers a command and waits for the single-line response.
func (c *IPCClient) Send(cmd Command) (*Response, error) {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}
	defer conn.Close()

	data, _ := json.Marshal(cmd)
	conn.Write(append(data, '\n'))

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return &resp, nil
}

// IsRunning reports whether a daemon answers on the socket.
func (c *IPCClient) IsRunning() bool {
	resp, err := c.Send(Command{Action: "status"})
	return err == nil && resp.Status == "ok"
}

// Stop tells the daemon to shut down.
func (c *IPCClient) Stop() error {
	_, err := c.Send(Command{Action: "stop"})
	return err
}

// Status fetches the daemon status.
func (c *IPCClient) Status() (*DaemonStatus, error) {
	resp, err := c.Send(Command{Action: "status"})
	if err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("%s", resp.Message)
	}

	data, _ := json.Marshal(resp.Data)
	var status DaemonStatus
	json.Unmarshal(data, &status)
	return &status, nil
}

// Reindex asks the daemon to reindex a project.
func (c *IPCClient) Reindex(path string) error {
	resp, err := c.Send(Command{Action: "reindex", Path: path})
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("%s", resp.Message)
	}
	return nil
}
