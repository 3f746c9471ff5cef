package mailer

import (
	"fmt"
	"html"

	"pin-support-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// TicketMail is the helpdesk notification for an escalated or closed ticket.
type TicketMail struct {
	TicketID     string
	Category     string
	Summary      string
	Reason       string
	RenderedText string
}

type IEmailService interface {
	SendTicket(toEmail string, mail TicketMail) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderEmail string, log logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		logger:      log,
	}
}

func subjectFor(mail TicketMail) string {
	return fmt.Sprintf("[Support][%s] %s", mail.Category, mail.Summary)
}

func buildTicketMessage(from, to string, mail TicketMail) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subjectFor(mail))

	m.SetBody("text/plain", mail.RenderedText)
	m.AddAlternative("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Ticket %s</h2>
			<p><strong>Reason:</strong> %s</p>
			<pre style="background: #f5f5f5; padding: 12px;">%s</pre>
		</div>
	`, html.EscapeString(mail.TicketID), html.EscapeString(mail.Reason), html.EscapeString(mail.RenderedText)))
	return m
}

func (s *emailService) SendTicket(toEmail string, mail TicketMail) error {
	m := buildTicketMessage(s.senderEmail, toEmail, mail)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send ticket", map[string]interface{}{
			"ticket_id": mail.TicketID,
			"to":        toEmail,
			"error":     err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Ticket sent", map[string]interface{}{
		"ticket_id": mail.TicketID,
		"to":        toEmail,
	})
	return nil
}
