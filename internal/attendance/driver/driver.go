// Package driver owns the broker connection: it dials, subscribes to the
// scan subject, survives disconnects, and hands every inbound message to a
// Handler on a bounded worker pool.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/metrics"
	"github.com/liyanaidrs/CPC357-Assign2/internal/events"
)

// Handler processes one inbound payload. Implementations must be safe for
// concurrent use.
type Handler interface {
	Handle(ctx context.Context, payload []byte)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, payload []byte)

func (f HandlerFunc) Handle(ctx context.Context, payload []byte) { f(ctx, payload) }

type Config struct {
	URL     string
	Subject string
	// Queue, when set, joins a queue group so several instances share the subject.
	Queue string
	// Name identifies the client connection on the broker.
	Name string
	// Workers bounds concurrent handler calls. Defaults to 8.
	Workers int
	// ReconnectWait is the pause between client reconnect attempts. Defaults to 2s.
	ReconnectWait time.Duration
	// ConnectTimeout bounds a single dial. Defaults to 5s.
	ConnectTimeout time.Duration
	// MaxRedialInterval caps the backoff between full re-dials. Defaults to 30s.
	MaxRedialInterval time.Duration
}

func (c *Config) withDefaults() {
	if c.Subject == "" {
		c.Subject = events.SubjectScan
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = 2 * time.Second
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.MaxRedialInterval <= 0 {
		c.MaxRedialInterval = 30 * time.Second
	}
	if c.Name == "" {
		c.Name = "attendance-server"
	}
}

// Driver runs the subscription state machine.
type Driver struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	state atomic.Int32

	mu        sync.RWMutex
	conn      *nats.Conn
	listeners []func(State)
}

func New(cfg Config, logger *slog.Logger, m *metrics.Metrics) *Driver {
	cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	d := &Driver{cfg: cfg, logger: logger, metrics: m}
	d.state.Store(int32(Disconnected))
	return d
}

// OnStateChange registers fn to run after every state transition. Register
// before calling Run.
func (d *Driver) OnStateChange(fn func(State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

func (d *Driver) State() State { return State(d.state.Load()) }

// Publisher publishes over whatever connection the driver currently holds.
// It returns events.ErrNotConnected between dials.
func (d *Driver) Publisher() events.Publisher { return connPublisher{d: d} }

// Run dials the broker and dispatches messages until ctx is cancelled. On
// return the subscription is gone, in-flight handlers have finished and the
// connection is closed. An error is only returned if the driver gives up
// for a reason other than ctx.
func (d *Driver) Run(ctx context.Context, h Handler) error {
	var g errgroup.Group
	g.SetLimit(d.cfg.Workers)

	defer func() {
		_ = g.Wait()
		d.setState(Shutdown)
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		d.setState(Connecting)
		sess, err := d.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("driver: dial: %w", err)
		}

		d.setConn(sess.conn)
		d.setState(Subscribed)
		d.logger.Info("subscribed", "subject", d.cfg.Subject, "queue", d.cfg.Queue, "server", sess.conn.ConnectedUrlRedacted())

		lost := d.consume(ctx, &g, sess, h)
		if !lost {
			d.shutdown(&g, sess, h)
			return nil
		}

		d.drainBuffered(&g, sess, h)
		d.setConn(nil)
		d.setState(Disconnected)
		d.logger.Warn("broker connection closed, redialing")
	}
}

// session is one dialed connection with its subscription.
type session struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	msgs   chan *nats.Msg
	closed chan struct{}
}

// dial connects and subscribes, retrying with exponential backoff until it
// succeeds or ctx ends.
func (d *Driver) dial(ctx context.Context) (*session, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.cfg.ReconnectWait
	b.MaxInterval = d.cfg.MaxRedialInterval

	attempt := 0
	op := func() (*session, error) {
		attempt++
		sess, err := d.connect()
		if err != nil {
			d.logger.Warn("broker connect failed", "attempt", attempt, "err", err)
			return nil, err
		}
		return sess, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(0),
	)
}

func (d *Driver) connect() (*session, error) {
	sess := &session{
		msgs:   make(chan *nats.Msg, 64*d.cfg.Workers),
		closed: make(chan struct{}),
	}
	var closeOnce sync.Once

	nc, err := nats.Connect(d.cfg.URL,
		nats.Name(d.cfg.Name),
		nats.Timeout(d.cfg.ConnectTimeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(d.cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if d.current() != nc {
				return
			}
			d.setState(Disconnected)
			d.logger.Warn("broker connection lost", "err", err)
			// The client redials on its own; report that the same way the
			// outer loop does.
			if nc.IsReconnecting() {
				d.setState(Connecting)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			if d.current() != nc {
				return
			}
			d.setState(Subscribed)
			d.logger.Info("broker reconnected", "server", nc.ConnectedUrlRedacted())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			closeOnce.Do(func() { close(sess.closed) })
		}),
	)
	if err != nil {
		return nil, err
	}

	if d.cfg.Queue != "" {
		sess.sub, err = nc.ChanQueueSubscribe(d.cfg.Subject, d.cfg.Queue, sess.msgs)
	} else {
		sess.sub, err = nc.ChanSubscribe(d.cfg.Subject, sess.msgs)
	}
	if err == nil {
		err = nc.Flush()
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", d.cfg.Subject, err)
	}

	sess.conn = nc
	return sess, nil
}

// consume dispatches messages until ctx ends (false) or the connection is
// closed for good (true).
func (d *Driver) consume(ctx context.Context, g *errgroup.Group, sess *session, h Handler) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-sess.closed:
			return true
		case msg := <-sess.msgs:
			d.dispatch(ctx, g, h, msg)
		}
	}
}

// dispatch blocks only while every worker is busy.
func (d *Driver) dispatch(ctx context.Context, g *errgroup.Group, h Handler, msg *nats.Msg) {
	data := msg.Data
	g.Go(func() error {
		h.Handle(ctx, data)
		return nil
	})
}

// shutdown stops new deliveries, finishes everything already received and
// closes the connection.
func (d *Driver) shutdown(g *errgroup.Group, sess *session, h Handler) {
	if err := sess.sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		d.logger.Warn("unsubscribe failed", "err", err)
	}

	d.drainBuffered(g, sess, h)

	_ = g.Wait()
	d.setState(Shutdown)
	d.setConn(nil)
	sess.conn.Close()
	d.logger.Info("driver stopped")
}

// drainBuffered dispatches messages already delivered to the session's
// channel; each of them still gets an answer.
func (d *Driver) drainBuffered(g *errgroup.Group, sess *session, h Handler) {
	ctx := context.Background()
	for {
		select {
		case msg := <-sess.msgs:
			d.dispatch(ctx, g, h, msg)
		default:
			return
		}
	}
}

func (d *Driver) setState(s State) {
	for {
		old := State(d.state.Load())
		if old == Shutdown || old == s {
			return
		}
		if d.state.CompareAndSwap(int32(old), int32(s)) {
			break
		}
	}

	d.metrics.SetDriverState(int(s))
	d.logger.Debug("driver state", "state", s.String())

	d.mu.RLock()
	listeners := append([]func(State){}, d.listeners...)
	d.mu.RUnlock()
	for _, fn := range listeners {
		fn(s)
	}
}

func (d *Driver) setConn(nc *nats.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conn = nc
}

func (d *Driver) current() *nats.Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conn
}

// connPublisher is the events.Publisher returned by Driver.Publisher.
type connPublisher struct {
	d *Driver
}

func (p connPublisher) Publish(ctx context.Context, topic string, event any) error {
	nc := p.d.current()
	if nc == nil {
		return events.ErrNotConnected
	}
	return events.NewConnPublisher(nc).Publish(ctx, topic, event)
}
