package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/gzip"

	"github.com/ccollicutt/logaroo/pkg/record"
)

// Defaults for HTTPOptions.
const (
	DefaultEndpoint      = "https://dc.services.visualstudio.com/v2/track"
	DefaultTimeout       = 10 * time.Second
	DefaultBatchSize     = 100
	DefaultFlushInterval = 5 * time.Second
	DefaultQueueSize     = 1024
)

// HTTPOptions configures an HTTPSink.
type HTTPOptions struct {
	Endpoint           string
	InstrumentationKey string
	Timeout            time.Duration // per request
	BatchSize          int
	FlushInterval      time.Duration
	QueueSize          int
	Compress           bool // gzip request bodies

	Logger     hclog.Logger
	HTTPClient *http.Client
}

// Response contains the result of one batch post.
type Response struct {
	StatusCode int
	Body       string
	Items      int
	Duration   time.Duration
	Error      error
}

// Success returns true if the batch was accepted (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPSink queues envelopes and posts them to the collector in batches.
type HTTPSink struct {
	opts    HTTPOptions
	client  *http.Client
	logger  hclog.Logger
	factory *envelopeFactory

	queue chan *Envelope
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewHTTPSink creates the sink and starts its background sender.
func NewHTTPSink(opts HTTPOptions) *HTTPSink {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	s := &HTTPSink{
		opts:    opts,
		client:  client,
		logger:  opts.Logger,
		factory: newEnvelopeFactory(opts.InstrumentationKey),
		queue:   make(chan *Envelope, opts.QueueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Emit implements Sink.
func (s *HTTPSink) Emit(ctx context.Context, rec *record.Record) error {
	return s.enqueue(ctx, s.factory.message(rec))
}

// EmitError implements Sink.
func (s *HTTPSink) EmitError(ctx context.Context, err error, tags map[string]string) error {
	return s.enqueue(ctx, s.factory.exception(err, tags))
}

// EmitEvent implements Sink.
func (s *HTTPSink) EmitEvent(ctx context.Context, name string, props map[string]string) error {
	return s.enqueue(ctx, s.factory.event(name, props))
}

func (s *HTTPSink) enqueue(ctx context.Context, env *Envelope) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	select {
	case s.queue <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting telemetry, posts whatever is queued and waits for
// the sender to finish or ctx to expire.
func (s *HTTPSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flushing telemetry: %w", ctx.Err())
	}
}

func (s *HTTPSink) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, s.opts.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.send(batch)
		batch = make([]*Envelope, 0, s.opts.BatchSize)
	}

	for {
		select {
		case env, ok := <-s.queue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, env)
			if len(batch) >= s.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *HTTPSink) send(batch []*Envelope) {
	resp := s.Post(context.Background(), batch)
	if resp.Success() {
		s.logger.Debug("telemetry batch sent", "items", resp.Items, "status", resp.StatusCode, "duration", resp.Duration)
		return
	}
	s.logger.Error("telemetry batch failed", "items", resp.Items, "status", resp.StatusCode, "error", resp.Error)
}

// Post sends a batch of envelopes synchronously.
func (s *HTTPSink) Post(ctx context.Context, batch []*Envelope) *Response {
	start := time.Now()
	resp := &Response{Items: len(batch)}

	payload, err := json.Marshal(batch)
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal batch: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	if s.opts.Compress {
		payload, err = gzipBytes(payload)
		if err != nil {
			resp.Error = fmt.Errorf("failed to compress batch: %w", err)
			resp.Duration = time.Since(start)
			return resp
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "logaroo")
	if s.opts.Compress {
		req.Header.Set("Content-Encoding", "gzip")
	}

	httpResp, err := s.client.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1024*1024))
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("collector returned status %d", resp.StatusCode)
	}

	return resp
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
