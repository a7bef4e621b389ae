// Package server exposes the engine over a newline-delimited JSON protocol
// on a plain TCP listener: one request per line in, one response per line
// out, no framing beyond the newline.
package server

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/phillarmonic/deskflow/internal/ast"
	"github.com/phillarmonic/deskflow/internal/config"
	"github.com/phillarmonic/deskflow/internal/desktop"
	"github.com/phillarmonic/deskflow/internal/engine"
	"github.com/phillarmonic/deskflow/internal/parser"
	"github.com/phillarmonic/deskflow/internal/validator"
)

// Request is one line of the protocol: action plus whatever fields that
// action needs.
type Request struct {
	Action string            `json:"action"`
	Task   string            `json:"task,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// Server serialises run requests onto a single Engine and answers the rest
// of the protocol (status/list_tasks/screenshot/reconnect/shutdown) without
// touching the engine's own execution path.
type Server struct {
	Engine  *engine.Engine
	Desktop desktop.Controller
	Config  *config.EngineConfig

	listener net.Listener
	cancel   context.CancelFunc

	// dispatching guards the run action at the TCP layer, on top of (not
	// instead of) the engine's own single-flight guard: it lets the server
	// reject a concurrent run before ever calling Execute, so the
	// "task already running" error is available even while a prior run is
	// still being dispatched into its goroutine.
	dispatching atomic.Bool
}

// New builds a Server around an already-constructed Engine and its desktop
// collaborator (reconnect/screenshot act on the desktop directly, bypassing
// the step loop).
func New(e *engine.Engine, d desktop.Controller, cfg *config.EngineConfig) *Server {
	return &Server{Engine: e, Desktop: d, Config: cfg}
}

// ListenAndServe accepts connections on addr until ctx is cancelled or a
// shutdown request arrives.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = ln

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Info().Str("addr", addr).Msg("server listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.reply(conn, map[string]any{"error": "invalid request: " + err.Error()})
			continue
		}

		resp := s.handle(ctx, req)
		s.reply(conn, resp)

		if req.Action == "shutdown" {
			return
		}
	}
}

func (s *Server) reply(conn net.Conn, resp map[string]any) {
	body, err := json.Marshal(resp)
	if err != nil {
		body = []byte(`{"error":"failed to encode response"}`)
	}
	conn.Write(append(body, '\n'))
}

func (s *Server) handle(ctx context.Context, req Request) map[string]any {
	switch req.Action {
	case "run":
		return s.handleRun(ctx, req)
	case "status":
		return s.handleStatus()
	case "list_tasks":
		return s.handleListTasks()
	case "screenshot":
		return s.handleScreenshot(ctx)
	case "reconnect":
		return s.handleReconnect(ctx)
	case "shutdown":
		return s.handleShutdown()
	default:
		return map[string]any{"error": "unknown action: " + req.Action}
	}
}

func (s *Server) handleRun(ctx context.Context, req Request) map[string]any {
	if req.Task == "" {
		return map[string]any{"error": "missing task"}
	}
	if !s.dispatching.CompareAndSwap(false, true) {
		return map[string]any{"error": "task already running"}
	}

	task, err := s.loadTaskDefinition(req.Task)
	if err != nil {
		s.dispatching.Store(false)
		return map[string]any{"error": err.Error()}
	}

	go func() {
		defer s.dispatching.Store(false)
		result, err := s.Engine.Execute(ctx, task, req.Params)
		if err != nil {
			log.Error().Err(err).Str("task", req.Task).Msg("task run finished with error")
			return
		}
		log.Info().Str("task", req.Task).Bool("success", result.Success).Msg("task run finished")
	}()

	return map[string]any{"started": true, "task": req.Task}
}

func (s *Server) handleStatus() map[string]any {
	return map[string]any{
		"running":      s.Engine.IsRunning(),
		"current_task": s.Engine.CurrentTaskName(),
		"current_step": s.Engine.CurrentStepName(),
	}
}

func (s *Server) handleListTasks() map[string]any {
	names, err := listTaskFiles(s.Config.TasksDir)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"tasks": names}
}

func listTaskFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("server: reading tasks dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mbl") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".mbl"))
	}
	return names, nil
}

func (s *Server) handleScreenshot(ctx context.Context) map[string]any {
	png, err := s.Desktop.CaptureScreenshot(ctx)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"image_base64": base64.StdEncoding.EncodeToString(png)}
}

func (s *Server) handleReconnect(ctx context.Context) map[string]any {
	if s.Desktop.IsConnected() {
		_ = s.Desktop.Disconnect(ctx)
	}
	cfg := desktop.Config{
		Host:   s.Config.RemoteDesktop.Host,
		Port:   s.Config.RemoteDesktop.Port,
		Width:  s.Config.RemoteDesktop.Width,
		Height: s.Config.RemoteDesktop.Height,
	}
	if err := s.Desktop.Connect(ctx, cfg); err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"connected": true}
}

func (s *Server) handleShutdown() map[string]any {
	if s.cancel != nil {
		s.cancel()
	}
	return map[string]any{"shutting_down": true}
}

// taskFilePath resolves a bare task name to its .mbl file under tasksDir.
func (s *Server) taskFilePath(name string) string {
	return filepath.Join(s.Config.TasksDir, name+".mbl")
}

// loadTaskDefinition reads, parses, and validates the named task file.
func (s *Server) loadTaskDefinition(name string) (*ast.TaskDefinition, error) {
	path := s.taskFilePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server: reading task %q: %w", name, err)
	}
	task, err := parser.ParseFile(path, string(data))
	if err != nil {
		return nil, fmt.Errorf("server: parsing task %q: %w", name, err)
	}
	if problems := validator.Validate(task); len(problems) > 0 {
		return nil, fmt.Errorf("server: task %q failed validation: %s", name, strings.Join(problems, "; "))
	}
	return task, nil
}
