package transport

import (
	"fmt"

	"github.com/shaharia-lab/mailcast/internal/config"
)

// New builds a Transport from the tagged configuration. The tag selects the
// concrete transport; missing or unknown tags and missing required fields
// are configuration errors, never a runtime fallback.
//
// No network I/O happens here for smtp and sendmail; the ses client
// validates credentials lazily on first send.
func New(cfg config.TransportConfig) (Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case config.TransportSMTP:
		return NewSMTP(cfg), nil
	case config.TransportSES:
		return NewSES(cfg)
	case config.TransportSendmail:
		return NewSendmail(cfg), nil
	default:
		// Validate rejects unknown kinds; kept for exhaustiveness.
		return nil, &config.ConfigurationError{
			Field:   "transport.transport",
			Message: fmt.Sprintf("unknown transport kind %q", cfg.Kind),
		}
	}
}
