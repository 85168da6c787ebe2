package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Transport kinds recognized in TransportConfig.
const (
	TransportSMTP     = "smtp"
	TransportSES      = "ses"
	TransportSendmail = "sendmail"
)

// Broadcast receiver policies.
const (
	BroadcastReceiverUsers  = "users"
	BroadcastReceiverConfig = "config"
)

// ConfigurationError reports a malformed or incomplete processor configuration.
// It is fatal at construction time and never retried.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error for %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// AWSCredentials holds optional static credentials for the ses transport.
// When absent, the default AWS credential chain is used.
type AWSCredentials struct {
	AccessKeyID     string `yaml:"accessKeyId" json:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey" json:"secretAccessKey"`
	SessionToken    string `yaml:"sessionToken" json:"sessionToken,omitempty"`
}

// TransportConfig is the tagged mail-transport configuration. The Kind tag
// decides which of the remaining fields are required; validation rejects an
// unknown tag rather than falling back to a default transport.
type TransportConfig struct {
	Kind string `yaml:"transport" json:"transport"`

	// smtp fields.
	Hostname   string `yaml:"hostname" json:"hostname,omitempty"`
	Port       int    `yaml:"port" json:"port,omitempty"`
	Secure     bool   `yaml:"secure" json:"secure,omitempty"`
	RequireTLS bool   `yaml:"requireTls" json:"requireTls,omitempty"`
	Username   string `yaml:"username" json:"username,omitempty"`
	Password   string `yaml:"password" json:"password,omitempty"`

	// ses fields.
	Region      string          `yaml:"region" json:"region,omitempty"`
	Credentials *AWSCredentials `yaml:"credentials" json:"credentials,omitempty"`

	// sendmail fields.
	Path    string `yaml:"path" json:"path,omitempty"`
	Newline string `yaml:"newline" json:"newline,omitempty"` // "unix" (default) or "windows"
}

// Validate checks that the active transport kind has its required fields set.
func (t *TransportConfig) Validate() error {
	switch t.Kind {
	case TransportSMTP:
		if t.Hostname == "" {
			return &ConfigurationError{Field: "transport.hostname", Message: "required for smtp transport"}
		}
		if t.Port <= 0 || t.Port > 65535 {
			return &ConfigurationError{Field: "transport.port", Message: fmt.Sprintf("invalid port %d", t.Port)}
		}
	case TransportSES:
		if t.Region == "" {
			return &ConfigurationError{Field: "transport.region", Message: "required for ses transport"}
		}
	case TransportSendmail:
		if t.Path == "" {
			return &ConfigurationError{Field: "transport.path", Message: "required for sendmail transport"}
		}
		switch t.Newline {
		case "", "unix", "windows":
		default:
			return &ConfigurationError{Field: "transport.newline", Message: fmt.Sprintf("unknown newline mode %q", t.Newline)}
		}
	case "":
		return &ConfigurationError{Field: "transport.transport", Message: "transport kind is required"}
	default:
		return &ConfigurationError{Field: "transport.transport", Message: fmt.Sprintf("unknown transport kind %q", t.Kind)}
	}
	return nil
}

// BroadcastConfig decides who receives notifications with no explicit target.
type BroadcastConfig struct {
	Receiver       string   `yaml:"receiver" json:"receiver"`
	ReceiverEmails []string `yaml:"receiverEmails" json:"receiverEmails,omitempty"`
}

// Validate checks the receiver policy and its dependent fields.
func (b *BroadcastConfig) Validate() error {
	switch b.Receiver {
	case BroadcastReceiverUsers:
	case BroadcastReceiverConfig:
		if len(b.ReceiverEmails) == 0 {
			return &ConfigurationError{Field: "broadcastConfig.receiverEmails", Message: "must be non-empty when receiver is \"config\""}
		}
	default:
		return &ConfigurationError{Field: "broadcastConfig.receiver", Message: fmt.Sprintf("unknown receiver %q", b.Receiver)}
	}
	return nil
}

// ProcessorConfig is the full email processor configuration, immutable for
// the processor's lifetime once loaded.
type ProcessorConfig struct {
	Transport TransportConfig  `yaml:"transport" json:"transport"`
	Sender    string           `yaml:"sender" json:"sender"`
	ReplyTo   string           `yaml:"replyTo" json:"replyTo,omitempty"`
	Broadcast *BroadcastConfig `yaml:"broadcastConfig" json:"broadcastConfig,omitempty"`
}

// Validate checks the whole processor configuration.
func (c *ProcessorConfig) Validate() error {
	if c.Sender == "" {
		return &ConfigurationError{Field: "sender", Message: "sender address is required"}
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if c.Broadcast != nil {
		if err := c.Broadcast.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LoadProcessor reads and validates the processor configuration from a YAML file.
func LoadProcessor(path string) (*ProcessorConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from admin-controlled config
	if err != nil {
		return nil, fmt.Errorf("reading processor config %q: %w", path, err)
	}
	var c ProcessorConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing processor config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
