package transport

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/shaharia-lab/mailcast/internal/config"
)

// sesAPI is the subset of the SES v2 client used by SESTransport.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport delivers messages through the SES API instead of speaking
// SMTP. Credential validation happens lazily on the first send.
type SESTransport struct {
	Region string

	client sesAPI
}

// NewSES creates an SESTransport bound to the configured region and
// optional static credentials. Without explicit credentials the default
// AWS credential chain applies.
func NewSES(cfg config.TransportConfig) (*SESTransport, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Credentials != nil {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Credentials.AccessKeyID,
				cfg.Credentials.SecretAccessKey,
				cfg.Credentials.SessionToken,
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, &config.ConfigurationError{
			Field:   "transport",
			Message: fmt.Sprintf("loading AWS configuration: %v", err),
		}
	}

	return &SESTransport{
		Region: cfg.Region,
		client: sesv2.NewFromConfig(awsCfg),
	}, nil
}

// Name returns the transport identifier.
func (t *SESTransport) Name() string { return "ses" }

// Send delivers msg via the SES SendEmail API.
func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Text)},
					Html: &types.Content{Data: aws.String(msg.HTML)},
				},
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	if _, err := t.client.SendEmail(ctx, input); err != nil {
		return &SendError{Recipient: msg.To, Err: err}
	}
	return nil
}
