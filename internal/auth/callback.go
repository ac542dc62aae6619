package auth

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/teemow/ticktick-mcp/internal/logging"
)

// CallbackPath is the path the provider redirects to.
const CallbackPath = "/callback"

// DefaultCallbackPort is the local port registered as redirect URI with the provider.
const DefaultCallbackPort = 8000

// RedirectURI returns the loopback redirect URI for port. It names
// localhost, which is what apps are registered with at the provider;
// AwaitCallback listens on both loopback addresses localhost resolves to.
func RedirectURI(port int) string {
	return fmt.Sprintf("http://localhost:%d%s", port, CallbackPath)
}

type callbackResult struct {
	code string
	err  error
}

// AwaitCallback listens on 127.0.0.1:port, and on [::1]:port where IPv6 is
// available, for the provider redirect and returns the authorization code.
// Exactly one callback request is handled. The listeners are closed before
// AwaitCallback returns.
func (m *Manager) AwaitCallback(ctx context.Context, port int, timeout time.Duration) (string, error) {
	lns, err := listenLoopback(port)
	if err != nil {
		m.failSession()
		return "", errors.Wrapf(err, "failed to listen for authorization callback on port %d", port)
	}
	return m.awaitOnListeners(ctx, lns, timeout)
}

// listenLoopback binds port on the IPv4 loopback, which is required, and on
// the IPv6 loopback when the host supports it.
func listenLoopback(port int) ([]net.Listener, error) {
	v4, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	lns := []net.Listener{v4}
	if v6, err := net.Listen("tcp", net.JoinHostPort("::1", strconv.Itoa(port))); err == nil {
		lns = append(lns, v6)
	}
	return lns, nil
}

func closeAll(lns []net.Listener) {
	for _, ln := range lns {
		_ = ln.Close()
	}
}

func (m *Manager) awaitOnListeners(ctx context.Context, lns []net.Listener, timeout time.Duration) (string, error) {
	logger := logging.WithOperation(m.logger, "auth.callback")

	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		closeAll(lns)
		return "", errors.New("no authorization in progress: call BeginAuthorization first")
	}
	expectedState := m.session.state
	if err := fire(m.machine, eventListen); err != nil {
		m.mu.Unlock()
		closeAll(lns)
		return "", err
	}
	m.mu.Unlock()

	results := make(chan callbackResult, 1)
	var handled atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		if !handled.CompareAndSwap(false, true) {
			http.Error(w, "authorization already handled", http.StatusGone)
			return
		}

		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = &CallbackError{Code: q.Get("error"), Description: q.Get("error_description")}
		case q.Get("state") != expectedState:
			res.err = &CallbackError{Code: "state_mismatch", Description: "state parameter does not match the pending authorization"}
		case q.Get("code") == "":
			res.err = &CallbackError{Code: "missing_code", Description: "callback carried no authorization code"}
		default:
			res.code = q.Get("code")
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if res.err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, "<html><body><h1>Authorization failed</h1><p>%s</p></body></html>", html.EscapeString(res.err.Error()))
		} else {
			_, _ = fmt.Fprint(w, "<html><body><h1>Authorization successful</h1>"+
				"<p>You can close this window and return to the terminal.</p></body></html>")
		}
		results <- res
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	for _, ln := range lns {
		go func(ln net.Listener) {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("callback server failed", "address", ln.Addr().String(), logging.Err(err))
			}
		}(ln)
	}
	logger.Info("waiting for authorization callback", "address", lns[0].Addr().String(), "timeout", timeout)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var res callbackResult
	select {
	case res = <-results:
	case <-timer.C:
		res.err = &CallbackTimeoutError{Timeout: timeout}
	case <-ctx.Done():
		res.err = errors.Wrap(ctx.Err(), "authorization cancelled")
	}

	if res.err != nil {
		logger.Warn("authorization callback failed", logging.Err(res.err))
		m.failSession()
		return "", res.err
	}
	return res.code, nil
}

// failSession discards the pending authorization.
func (m *Manager) failSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSessionLocked()
}

// failSessionLocked is failSession for callers holding m.mu. Without a
// pending authorization it leaves the state alone.
func (m *Manager) failSessionLocked() {
	if m.session == nil {
		return
	}
	m.session = nil
	_ = fire(m.machine, eventFail)
}
