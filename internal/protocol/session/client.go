package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/danmuck/zusictl/internal/observability"
	"github.com/danmuck/zusictl/internal/protocol"
	"github.com/danmuck/zusictl/internal/protocol/frame"
	"github.com/danmuck/zusictl/internal/protocol/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrAddressRequired    = errors.New("session: zusi address required")
	ErrClientNameRequired = errors.New("session: client name required")
	ErrClosed             = errors.New("session: client closed")
	// ErrBroken marks a client closed after a failure that left a request
	// unanswered or the stream off a message boundary.
	ErrBroken = errors.New("session: connection unusable")
)

type ClientConfig struct {
	Address            string
	ClientName         string
	ClientVersion      string
	Session            Config
	MaxConnectAttempts int
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Address:            "127.0.0.1:1436",
		ClientName:         "zusictl",
		ClientVersion:      "dev",
		Session:            DefaultConfig(),
		MaxConnectAttempts: 1,
	}
}

func (c ClientConfig) validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return ErrAddressRequired
	}
	if strings.TrimSpace(c.ClientName) == "" {
		return ErrClientNameRequired
	}
	return nil
}

// Client is one connection to a Zusi host. It is not safe for concurrent
// use; exchanges and Next must be called from one goroutine.
type Client struct {
	cfg      ClientConfig
	conn     net.Conn
	stream   *frame.Conn
	id       string
	logger   zerolog.Logger
	tracer   trace.Tracer
	reported frame.Stats
	broken   error
}

// Dial connects to cfg.Address, retrying with backoff up to
// cfg.MaxConnectAttempts times (zero or less retries until ctx is done).
func Dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Session = cfg.Session.WithDefaults()
	retry := newDialRetry(cfg.Session.Backoff, cfg.MaxConnectAttempts, rand.New(rand.NewSource(time.Now().UnixNano())))

	dialer := net.Dialer{Timeout: cfg.Session.ConnectTimeout}
	for {
		conn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
		if err == nil {
			return NewClient(conn, cfg), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		wait, ok := retry.failed()
		log.Warn().Int("attempt", retry.attempts()).Str("addr", cfg.Address).Err(err).Msg("zusi dial failed")
		if !ok {
			return nil, fmt.Errorf("session: dial %s: giving up after %d attempts: %w", cfg.Address, retry.attempts(), err)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// NewClient wraps an established connection. The client owns conn from
// here on.
func NewClient(conn net.Conn, cfg ClientConfig) *Client {
	cfg.Session = cfg.Session.WithDefaults()
	id := uuid.NewString()
	return &Client{
		cfg:    cfg,
		conn:   conn,
		stream: frame.NewConn(conn, cfg.Session.Limits),
		id:     id,
		logger: log.With().Str("session", id).Str("peer", conn.RemoteAddr().String()).Logger(),
		tracer: observability.Tracer(),
	}
}

// ID is the per-connection id carried in logs and spans.
func (c *Client) ID() string {
	return c.id
}

// Stats returns the stream traffic counters.
func (c *Client) Stats() frame.Stats {
	return c.stream.Stats()
}

// Handshake runs HELLO. The response must arrive within HandshakeTimeout;
// cancelling ctx aborts the exchange with ctx.Err(). Any failure other than
// a refused or malformed ack closes the client, since the host may still
// answer the abandoned request.
func (c *Client) Handshake(ctx context.Context) (HostInfo, error) {
	ex := NewExchange(schema.HelloRequest(c.cfg.ClientName, c.cfg.ClientVersion), schema.AckHello)
	if err := c.run(ctx, ex); err != nil {
		return HostInfo{}, err
	}
	info := hostInfo(ex.Response())
	c.logger.Info().Str("zusi_version", info.Version).Str("connection_info", info.ConnectionInfo).Msg("hello accepted")
	return info, nil
}

// Subscribe runs NEEDED_DATA with the handshake deadline.
func (c *Client) Subscribe(ctx context.Context, sub Subscription) error {
	ex := NewExchange(schema.NeededDataRequest(sub.CabDisplays, sub.ProgramData, sub.CabOperation), schema.AckNeededData)
	if err := c.run(ctx, ex); err != nil {
		return err
	}
	c.logger.Info().
		Int("cab_displays", len(sub.CabDisplays)).
		Int("program_data", len(sub.ProgramData)).
		Bool("cab_operation", sub.CabOperation).
		Msg("needed data accepted")
	return nil
}

// Next blocks for the next complete message from the host. io.EOF means
// the host closed the connection between messages. Cancelling ctx unblocks
// a pending read and returns ctx.Err(). A read that fails part-way through
// a message closes the client and later calls return ErrBroken.
func (c *Client) Next(ctx context.Context) (protocol.Node, error) {
	if err := c.usable(); err != nil {
		return protocol.Node{}, err
	}
	if err := c.conn.SetReadDeadline(deadline(ctx, c.cfg.Session.ReadTimeout)); err != nil {
		return protocol.Node{}, err
	}
	stop := c.interruptOn(ctx)
	msg, err := c.stream.ReadMessage()
	stop()
	c.reportTraffic()
	if err != nil {
		if desync := c.stream.Err(); desync != nil {
			c.breakOff(desync)
		} else if errors.Is(err, protocol.ErrFraming) {
			c.breakOff(err)
		}
		if ctxErr := contextError(ctx); ctxErr != nil {
			return protocol.Node{}, ctxErr
		}
		return protocol.Node{}, err
	}
	if schema.IsDataMessage(&msg) {
		observability.RecordReadings(schema.DataCommandName(msg.Children[0].ID), len(msg.Children[0].Attributes))
	}
	return msg, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) usable() error {
	if c.broken != nil {
		return c.broken
	}
	if c.conn == nil {
		return ErrClosed
	}
	return nil
}

// breakOff closes the connection; later calls return ErrBroken wrapping
// cause.
func (c *Client) breakOff(cause error) {
	c.broken = fmt.Errorf("%w: %w", ErrBroken, cause)
	c.logger.Warn().Err(cause).Msg("closing zusi connection")
	_ = c.Close()
}

// interruptOn makes pending reads and writes on the connection fail once ctx
// is done. The returned stop must be called before the next I/O; it waits
// for an already fired interrupt so no stale deadline lands later.
func (c *Client) interruptOn(ctx context.Context) (stop func()) {
	conn := c.conn
	fired := make(chan struct{})
	cancel := context.AfterFunc(ctx, func() {
		defer close(fired)
		_ = conn.SetDeadline(time.Now())
	})
	return func() {
		if !cancel() {
			<-fired
		}
	}
}

func (c *Client) run(ctx context.Context, ex *Exchange) error {
	if err := c.usable(); err != nil {
		return err
	}
	ctx, span := c.tracer.Start(ctx, "zusi."+ex.Ack.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("zusi.session", c.id),
			attribute.String("zusi.exchange", ex.Ack.Name),
		),
	)
	defer span.End()

	ex.Limits = c.cfg.Session.Limits
	if err := c.conn.SetReadDeadline(deadline(ctx, c.cfg.Session.HandshakeTimeout)); err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(deadline(ctx, c.cfg.Session.WriteTimeout)); err != nil {
		return err
	}
	stop := c.interruptOn(ctx)
	err := ex.Run(c.stream)
	stop()
	_ = c.conn.SetDeadline(time.Time{})
	c.reportTraffic()
	if err != nil {
		if ctxErr := contextError(ctx); ctxErr != nil {
			err = ctxErr
		}
	}

	span.SetAttributes(attribute.String("zusi.outcome", Outcome(err)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	// A complete but refused or malformed ack leaves the stream in sync.
	if err != nil && !errors.Is(err, protocol.ErrProtocol) && !errors.Is(err, protocol.ErrRejected) {
		c.breakOff(err)
	}
	return err
}

func (c *Client) reportTraffic() {
	now := c.stream.Stats()
	prev := c.reported
	observability.RecordTraffic(
		now.MessagesIn-prev.MessagesIn,
		now.MessagesOut-prev.MessagesOut,
		now.BytesIn-prev.BytesIn,
		now.BytesOut-prev.BytesOut,
	)
	c.reported = now
}

// contextError is ctx.Err(), except that a passed deadline already counts:
// the connection deadline derived from it can fire before ctx's own timer.
func contextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return context.DeadlineExceeded
	}
	return nil
}

// deadline picks the earlier of ctx's deadline and now+timeout. The zero
// time clears any deadline.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	var d time.Time
	if timeout > 0 {
		d = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}
	return d
}
