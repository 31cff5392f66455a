package llm

import "fmt"

// NewCaller creates a backend caller for the configured protocol.
// A missing credential is not an error here; calls fail with a
// ConfigurationError before any network attempt.
func NewCaller(cfg Config) (Caller, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	switch cfg.ResolveProtocol() {
	case ProtocolNative:
		return newGeminiCaller(cfg), nil
	case ProtocolChat:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("chat protocol requires an endpoint URL")
		}
		return newChatCaller(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", cfg.Protocol)
	}
}
