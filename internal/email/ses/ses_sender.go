package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"ogarx/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	subject := "Bienvenue sur OGAR Extraction"
	htmlBody := buildWelcomeHTML(toName)
	textBody := fmt.Sprintf("Bonjour %s,\n\nVotre compte OGAR Extraction est prêt. "+
		"Vous pouvez maintenant téléverser vos documents d'assurance.\n\nL'équipe OGAR", toName)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendExportReadyEmail(ctx context.Context, toEmail, toName, fileName, downloadURL string) error {
	subject := fmt.Sprintf("Votre export %s est disponible", fileName)
	htmlBody := buildExportReadyHTML(toName, fileName, downloadURL)
	textBody := fmt.Sprintf("Bonjour %s,\n\nL'export %s est disponible au téléchargement :\n%s\n\n"+
		"Ce lien expire prochainement.\n\nL'équipe OGAR", toName, fileName, downloadURL)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildWelcomeHTML(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Bienvenue</h2>
  <p>Bonjour %s,</p>
  <p>Votre compte OGAR Extraction est prêt. Vous pouvez maintenant téléverser vos documents d'assurance (PDF, PNG, JPEG).</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">OGAR - Extraction de documents d'assurance</p>
</body>
</html>`, html.EscapeString(name))
}

func buildExportReadyHTML(name, fileName, downloadURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Export disponible</h2>
  <p>Bonjour %s,</p>
  <p>L'export <strong>%s</strong> est prêt.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Télécharger</a>
  </p>
  <p style="color: #999; font-size: 12px;">Ce lien expire prochainement.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">OGAR - Extraction de documents d'assurance</p>
</body>
</html>`, html.EscapeString(name), html.EscapeString(fileName), html.EscapeString(downloadURL))
}
