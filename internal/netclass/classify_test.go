package netclass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

// statusError is a minimal HTTPStatusError for tests.
type statusError struct {
	status int
}

func (e *statusError) Error() string   { return fmt.Sprintf("HTTP %d", e.status) }
func (e *statusError) HTTPStatus() int { return e.status }

// timeoutError satisfies net.Error with Timeout() == true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"unauthorized", &statusError{401}, CategoryAuthError},
		{"forbidden", &statusError{403}, CategoryAuthError},
		{"not found", &statusError{404}, CategoryClientError},
		{"rate limited", &statusError{429}, CategoryClientError},
		{"server error", &statusError{503}, CategoryServerError},
		{"no status", &statusError{0}, CategoryProtocolError},
		{"wrapped status", fmt.Errorf("fetching works: %w", &statusError{500}), CategoryServerError},
		{"deadline", context.DeadlineExceeded, CategoryTimeoutError},
		{"net timeout", timeoutError{}, CategoryTimeoutError},
		{"proxy", errors.New("proxyconnect tcp: dial tcp: refused"), CategoryProxyError},
		{"tls", errors.New("tls: handshake failure"), CategoryTLSError},
		{"certificate", errors.New("x509: certificate signed by unknown authority"), CategoryTLSError},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.example.org"}, CategoryDNSError},
		{"refused", fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED), CategoryConnectionRefused},
		{"refused by message", errors.New("dial tcp 127.0.0.1:80: connection refused"), CategoryConnectionRefused},
		{"op error", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("reset")}, CategoryConnectionError},
		{"unknown", errors.New("something odd"), CategoryNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_NilError(t *testing.T) {
	if got := Classify(nil); got != "" {
		t.Errorf("Classify(nil) = %q, want empty", got)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &statusError{503}, true},
		{"rate limit", &statusError{429}, true},
		{"request timeout", &statusError{408}, true},
		{"auth", &statusError{401}, false},
		{"client", &statusError{404}, false},
		{"plain network", errors.New("dial tcp: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// Guard against the DNS timeout case flipping categories: a DNS error whose
// IsTimeout flag is set still classifies as a timeout, matching the
// taxonomy's priority order.
func TestClassify_DNSTimeoutPrefersTimeout(t *testing.T) {
	err := &net.DNSError{Err: "lookup timed out", Name: "api.example.org", IsTimeout: true}
	if got := Classify(err); got != CategoryTimeoutError {
		t.Errorf("Classify(dns timeout) = %q, want %q", got, CategoryTimeoutError)
	}
}
