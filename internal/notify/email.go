// internal/notify/email.go
package notify

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/models"
)

// EmailSender is the outbound mail boundary; tests substitute a fake.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewSESClient builds the production SES-backed sender.
func NewSESClient(ctx context.Context, region string) (*ses.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(cfg), nil
}

// Notifier emails the final recommendation's citizen communication to the
// applicant. Notification is best-effort and never alters the run outcome.
type Notifier struct {
	sender EmailSender
	from   string
	logger logger.Logger
}

func NewNotifier(sender EmailSender, from string, log logger.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		from:   from,
		logger: log.With(map[string]interface{}{
			"component": "notifier",
		}),
	}
}

// NotifyApplicant sends the citizen communication for a completed run. Runs
// whose recommendation stage failed to parse have no message to send; that is
// reported as an error so the caller can route the case to a human.
func (n *Notifier) NotifyApplicant(ctx context.Context, to string, result *models.ProcessingResult) error {
	if to == "" {
		return fmt.Errorf("no applicant email on record for %s", result.ApplicationID)
	}

	message, ok := result.FinalRecommendation.String("citizen_communication")
	if !ok || message == "" {
		return fmt.Errorf("no citizen communication in result for %s", result.ApplicationID)
	}

	recommendation, _ := result.FinalRecommendation.String("final_recommendation")
	subject := fmt.Sprintf("TDLR Application %s - %s", result.ApplicationID, recommendation)

	_, err := n.sender.SendEmail(ctx, &ses.SendEmailInput{
		Source: &n.from,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: &subject},
			Body: &types.Body{
				Text: &types.Content{Data: &message},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send applicant email: %w", err)
	}

	n.logger.Info("applicant notified", map[string]interface{}{
		"applicationId": result.ApplicationID,
		"to":            to,
	})
	return nil
}

// ApplicantEmail digs the applicant's email address out of the free-form
// record fields.
func ApplicantEmail(record models.ApplicationRecord) string {
	info, ok := record.Fields["applicant_info"].(map[string]interface{})
	if !ok {
		return ""
	}
	email, _ := info["email"].(string)
	return email
}
