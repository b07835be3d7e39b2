// internal/registration/notifier.go
package registration

import (
	"context"
	"fmt"

	commonaws "member-registration/internal/common/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"
)

// Notifier sends the post-registration welcome message. Delivery is best
// effort; a failure never fails the registration.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name, username string) error
}

// SESNotifier sends the welcome email through AWS SES.
type SESNotifier struct {
	client    *commonaws.SESClient
	fromEmail string
}

func NewSESNotifier(client *commonaws.SESClient, fromEmail string) *SESNotifier {
	return &SESNotifier{client: client, fromEmail: fromEmail}
}

func (n *SESNotifier) SendWelcome(ctx context.Context, email, name, username string) error {
	subject := "欢迎加入 | Registration Confirmed"
	body := fmt.Sprintf(
		"%s，你好！\n\n你的报名已完成，账号 %s 已开通，请使用报名时设置的密码登录。\n\nNotification ID: %s\n",
		name, username, uuid.New().String(),
	)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("welcome email send failed: %w", err)
	}
	return nil
}

// NoopNotifier is used when email delivery is disabled.
type NoopNotifier struct{}

func (NoopNotifier) SendWelcome(ctx context.Context, email, name, username string) error {
	return nil
}
