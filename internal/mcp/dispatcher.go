package mcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/bobmcallan/triage-mcp/internal/common"
)

// maxResponseSize caps how much of an upstream response body is read.
const maxResponseSize = 50 * 1024 * 1024 // 50MB

// OutcomeKind tags the three ways a dispatch can end.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeUpstreamError
	OutcomeTransportFailure
)

// Outcome is the classified result of one dispatch. Success and upstream
// errors carry the status and raw body; transport failures carry the
// classified error instead and have no response at all.
type Outcome struct {
	Kind        OutcomeKind
	Status      int
	Body        []byte
	ContentType string
	Failure     *TransportError
}

// Dispatcher executes built requests against the upstream API with a single
// configured timeout. It is safe for concurrent use.
type Dispatcher struct {
	httpClient *http.Client
	logger     *common.Logger
}

func NewDispatcher(timeout time.Duration, logger *common.Logger) *Dispatcher {
	return &Dispatcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Dispatch executes the request and classifies the result. A GET that fails
// with a timeout or connection reset is retried exactly once; every other
// method and failure mode gets a single attempt. A request the caller has
// already cancelled is never retried, and upstream error responses are
// answers, not failures, so they never retry either.
func (d *Dispatcher) Dispatch(ctx context.Context, br *BuiltRequest) Outcome {
	out := d.do(ctx, br)
	if d.shouldRetry(ctx, br, out) {
		d.requestLogger(ctx).Warn().
			Str("method", br.Method).
			Str("url", br.URL).
			Str("cause", string(out.Failure.Cause)).
			Msg("retrying idempotent request")
		out = d.do(ctx, br)
	}
	return out
}

func (d *Dispatcher) shouldRetry(ctx context.Context, br *BuiltRequest, out Outcome) bool {
	if br.Method != http.MethodGet {
		return false
	}
	if out.Kind != OutcomeTransportFailure {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	cause := out.Failure.Cause
	return cause == CauseTimeout || cause == CauseConnectionReset
}

func (d *Dispatcher) do(ctx context.Context, br *BuiltRequest) Outcome {
	logger := d.requestLogger(ctx)

	var bodyReader io.Reader
	if br.Body != nil {
		bodyReader = bytes.NewReader(br.Body)
	}
	req, err := http.NewRequestWithContext(ctx, br.Method, br.URL, bodyReader)
	if err != nil {
		return Outcome{
			Kind:    OutcomeTransportFailure,
			Failure: &TransportError{Cause: CauseOther, Err: err},
		}
	}
	req.Header = br.Header.Clone()

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		cause := classifyTransportError(err)
		logger.Error().
			Str("method", br.Method).
			Str("url", br.URL).
			Int64("duration_ms", duration.Milliseconds()).
			Str("cause", string(cause)).
			Str("error", err.Error()).
			Msg("upstream request failed")
		return Outcome{
			Kind:    OutcomeTransportFailure,
			Failure: &TransportError{Cause: cause, Err: err},
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		cause := classifyTransportError(err)
		logger.Error().
			Str("method", br.Method).
			Str("url", br.URL).
			Int("status", resp.StatusCode).
			Str("cause", string(cause)).
			Str("error", err.Error()).
			Msg("failed to read upstream response")
		return Outcome{
			Kind:    OutcomeTransportFailure,
			Failure: &TransportError{Cause: cause, Err: err},
		}
	}

	logger.Debug().
		Str("method", br.Method).
		Str("url", br.URL).
		Int("status", resp.StatusCode).
		Int64("duration_ms", duration.Milliseconds()).
		Int("bytes", len(body)).
		Msg("upstream response")

	kind := OutcomeSuccess
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind = OutcomeUpstreamError
	}
	return Outcome{
		Kind:        kind,
		Status:      resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}
}

func (d *Dispatcher) requestLogger(ctx context.Context) *common.Logger {
	if id, ok := CorrelationIDFrom(ctx); ok {
		return d.logger.WithCorrelationId(id)
	}
	return d.logger
}

// classifyTransportError maps a network-level error onto a failure cause.
// Cancellation is checked before timeouts: a request aborted by its caller
// reports cancelled even when the wrapped error also looks like a timeout.
func classifyTransportError(err error) FailureCause {
	if errors.Is(err, context.Canceled) {
		return CauseCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CauseTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CauseTimeout
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return CauseConnectionReset
	}
	return CauseOther
}
