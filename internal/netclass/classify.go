// Package netclass classifies transport and protocol errors into a small
// taxonomy used for retry decisions and run-report attribution.
package netclass

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Category is a failure class assigned to an adapter error.
type Category string

const (
	CategoryAuthError         Category = "auth_error"
	CategoryClientError       Category = "client_error"
	CategoryServerError       Category = "server_error"
	CategoryProtocolError     Category = "protocol_error"
	CategoryTimeoutError      Category = "timeout_error"
	CategoryProxyError        Category = "proxy_error"
	CategoryTLSError          Category = "tls_error"
	CategoryDNSError          Category = "dns_error"
	CategoryConnectionRefused Category = "connection_refused"
	CategoryConnectionError   Category = "connection_error"
	CategoryNetworkError      Category = "network_error"

	// CategoryFeedFetchError marks a structural failure to fetch or parse
	// a whole feed document.
	CategoryFeedFetchError Category = "feed_fetch_error"
)

// HTTPStatusError is implemented by errors that carry an HTTP status code.
// A zero status means the request failed at the protocol level before a
// status line was read.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// Classify maps an error to exactly one failure category. It never panics
// and falls back to the generic network category for anything it cannot
// recognize. A nil error yields the empty category.
func Classify(err error) Category {
	if err == nil {
		return ""
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		status := statusErr.HTTPStatus()
		switch {
		case status == 401 || status == 403:
			return CategoryAuthError
		case status >= 500:
			return CategoryServerError
		case status >= 400:
			return CategoryClientError
		default:
			return CategoryProtocolError
		}
	}

	if isTimeout(err) {
		return CategoryTimeoutError
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "proxy") {
		return CategoryProxyError
	}

	if isTLSError(err, msg) {
		return CategoryTLSError
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || strings.Contains(msg, "no such host") {
		return CategoryDNSError
	}

	if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(msg, "connection refused") {
		return CategoryConnectionRefused
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) || strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe") {
		return CategoryConnectionError
	}

	return CategoryNetworkError
}

// Retryable reports whether the error is worth retrying: server-side HTTP
// failures and rate-limit rejections. Everything else either will not
// improve on retry (auth, client errors) or is reported immediately.
func Retryable(err error) bool {
	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		status := statusErr.HTTPStatus()
		return status >= 500 || status == 429 || status == 408
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isTLSError(err error, msg string) bool {
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	return strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:") ||
		strings.Contains(msg, "certificate")
}
