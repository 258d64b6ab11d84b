package game

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher executes one line of input for a session. Returning true
// closes the connection.
type Dispatcher func(ctx context.Context, h *Hub, s *Session, line string) bool

// ServerConfig selects the listeners ListenAndServe opens. An empty address
// disables that listener.
type ServerConfig struct {
	TelnetAddr    string
	WebSocketAddr string
	MessageLimit  int
}

var netListenFunc = net.Listen

const (
	welcomeBanner = "Welcome to Kilnworld, where worlds are shaped by the people who walk them."
	farewell      = "The kiln cools. Until next time."
	maxLoginTries = 3
)

// lineConn is a client transport that exchanges whole lines.
type lineConn interface {
	ReadLine() (string, error)
	WriteString(string) error
	// Width is the client's terminal width, 0 when unknown.
	Width() int
	Close() error
}

// ListenAndServe serves telnet and websocket clients until ctx is cancelled
// or a listener fails.
func ListenAndServe(ctx context.Context, h *Hub, dispatch Dispatcher, cfg ServerConfig) error {
	if dispatch == nil {
		return fmt.Errorf("dispatcher must not be nil")
	}
	g, ctx := errgroup.WithContext(ctx)

	if cfg.TelnetAddr != "" {
		ln, err := netListenFunc("tcp", cfg.TelnetAddr)
		if err != nil {
			return fmt.Errorf("listen telnet: %w", err)
		}
		h.logger.Info("telnet listening", zap.String("addr", ln.Addr().String()))
		g.Go(func() error {
			<-ctx.Done()
			return ln.Close()
		})
		g.Go(func() error {
			err := acceptConnections(h.logger, ln, func(conn net.Conn) {
				go serveConn(ctx, h, NewTelnetConn(conn), dispatch, conn.RemoteAddr().String())
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	if cfg.WebSocketAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", WebSocketHandler(h, dispatch, cfg.MessageLimit))
		srv := &http.Server{
			Addr:              cfg.WebSocketAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		h.logger.Info("websocket listening", zap.String("addr", cfg.WebSocketAddr))
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve websocket: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// serveConn runs one client from login to disconnect.
func serveConn(ctx context.Context, h *Hub, conn lineConn, dispatch Dispatcher, remote string) {
	defer conn.Close()

	s, err := login(ctx, h, conn)
	if err != nil {
		h.logger.Debug("login abandoned", zap.String("remote", remote), zap.Error(err))
		return
	}

	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		for msg := range s.Output {
			_ = conn.WriteString(msg)
		}
	}()

	s.Width = conn.Width()
	s.Send(Ansi("\r\nWelcome, " + HighlightName(s.User.Name) + "!"))
	showSurroundings(h, s)
	s.Send(Prompt(s))

	for {
		raw, err := conn.ReadLine()
		if err != nil {
			break
		}
		s.Width = conn.Width()
		line := sanitizeInput(raw)
		if s.Active == nil {
			line = strings.TrimSpace(line)
			if line == "" {
				s.Send(Prompt(s))
				continue
			}
			if !s.allowCommand(time.Now()) {
				s.Send(Notice("You are sending commands too quickly. Please wait."))
				s.Send(Prompt(s))
				continue
			}
		}
		if quit := dispatch(ctx, h, s, line); quit {
			break
		}
		s.Send(Prompt(s))
	}

	s.Send(Ansi("\r\n" + Style(farewell, AnsiMagenta, AnsiBold) + "\r\n"))
	h.Disconnect(s)
	<-pumped
}

// login asks for a name, and a passphrase for the observer name, until the
// hub accepts the session.
func login(ctx context.Context, h *Hub, conn lineConn) (*Session, error) {
	_ = conn.WriteString(Ansi("\r\n" + Style(welcomeBanner, AnsiMagenta, AnsiBold) + "\r\n"))
	var lastErr error
	for range maxLoginTries {
		_ = conn.WriteString("\r\nWhat is your name? ")
		name, err := conn.ReadLine()
		if err != nil {
			return nil, err
		}
		name = Trim(name)
		var passphrase string
		if h.IsObserverName(name) {
			_ = conn.WriteString("\r\nPassphrase: ")
			if passphrase, err = conn.ReadLine(); err != nil {
				return nil, err
			}
			passphrase = strings.TrimSpace(passphrase)
		}
		s, err := h.Login(ctx, name, passphrase)
		if err == nil {
			return s, nil
		}
		lastErr = err
		_ = conn.WriteString(Failure(err.Error()))
	}
	return nil, fmt.Errorf("too many failed logins: %w", lastErr)
}

// showSurroundings describes the session's room, or the lobby.
func showSurroundings(h *Hub, s *Session) {
	w := s.World()
	if w == nil {
		h.ShowLobby(s)
		return
	}
	w.Lock()
	defer w.Unlock()
	if w.Deleted() {
		s.User.Room = nil
		h.setLocation(s, nil)
		h.ShowLobby(s)
		return
	}
	h.ShowRoom(s)
}

const (
	acceptBackoffStart = 50 * time.Millisecond
	acceptBackoffMax   = time.Second
)

var acceptSleep = time.Sleep

func acceptConnections(logger *zap.Logger, ln net.Listener, handle func(net.Conn)) error {
	backoff := acceptBackoffStart
	for {
		conn, err := ln.Accept()
		if err != nil {
			if isTemporaryAcceptError(err) {
				logger.Warn("temporary accept error", zap.Error(err), zap.Duration("retry_in", backoff))
				acceptSleep(backoff)
				backoff = min(backoff*2, acceptBackoffMax)
				continue
			}
			return err
		}
		backoff = acceptBackoffStart
		handle(conn)
	}
}

func isTemporaryAcceptError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var te interface{ Temporary() bool }
	if errors.As(err, &te) && te.Temporary() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
