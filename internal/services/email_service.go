package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailSender is the email-sending collaborator contract.
type EmailSender interface {
	SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	resetURL    string
	logger      *slog.Logger
}

func NewAWSSESEmailService(region, fromAddress, resetURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		resetURL:    resetURL,
		logger:      logger,
	}, nil
}

// SendPasswordResetEmail sends the reset link. The plaintext token appears
// only in the outgoing message, never in logs.
func (s *AWSSESEmailService) SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.resetURL, token)
	minutes := int(time.Until(expiresAt).Minutes())

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1>Reset Your Password</h1>
    <p>We received a request to reset the password for your account. Click the link below to choose a new password:</p>
    <p><a href="%s" style="display: inline-block; background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Reset Password</a></p>
    <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
    <p><strong>This link will expire in %d minutes and can be used only once.</strong></p>
    <p>Didn't request a password reset? You can ignore this email; your password will not change.</p>
  </div>
</body>
</html>
`, resetLink, resetLink, minutes)

	textBody := fmt.Sprintf(`Reset Your Password

We received a request to reset the password for your account. Open the link below to choose a new password:

%s

This link will expire in %d minutes and can be used only once.

Didn't request a password reset? You can ignore this email; your password will not change.
`, resetLink, minutes)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Reset your password"),
			},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		// Do not wrap with the token or link; the error alone is enough
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}
