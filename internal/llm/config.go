package llm

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Protocol selects the wire protocol used to reach the backend.
type Protocol string

const (
	// ProtocolAuto picks native unless a non-native endpoint is configured.
	ProtocolAuto Protocol = "auto"
	// ProtocolNative uses the schema-constrained generate-content API.
	ProtocolNative Protocol = "native"
	// ProtocolChat uses a chat-completion compatible REST endpoint.
	ProtocolChat Protocol = "chat"
)

// NativeHost is the host of the native provider.
const NativeHost = "generativelanguage.googleapis.com"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds configuration for the backend caller and estimator.
type Config struct {
	Protocol          Protocol
	APIKey            string
	Model             string
	Endpoint          string
	MaxRetries        int
	RetryDelay        time.Duration
	Timeout           time.Duration
	RequestsPerMinute int
}

// ParseProtocol validates a protocol name.
func ParseProtocol(s string) (Protocol, error) {
	switch Protocol(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProtocolAuto:
		return ProtocolAuto, nil
	case ProtocolNative:
		return ProtocolNative, nil
	case ProtocolChat:
		return ProtocolChat, nil
	default:
		return "", fmt.Errorf("unsupported protocol: %s", s)
	}
}

// ResolveProtocol returns the concrete protocol for the configuration.
// In auto mode a configured endpoint whose host is not a native provider host
// switches to chat-completion mode.
func (c Config) ResolveProtocol() Protocol {
	switch c.Protocol {
	case ProtocolNative, ProtocolChat:
		return c.Protocol
	}
	if c.Endpoint == "" {
		return ProtocolNative
	}
	if isNativeHost(c.Endpoint) {
		return ProtocolNative
	}
	return ProtocolChat
}

func isNativeHost(endpoint string) bool {
	host := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	host = strings.ToLower(host)
	return host == NativeHost || host == "googleapis.com" || strings.HasSuffix(host, ".googleapis.com")
}
