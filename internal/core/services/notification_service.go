package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// NotificationService sends transactional emails via SendGrid.
// Without SENDGRID_API_KEY it degrades to logging, which keeps local
// development and tests free of external calls.
type NotificationService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("MAIL_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "noreply@schoolhub.app"
	}
	fromName := os.Getenv("MAIL_FROM_NAME")
	if fromName == "" {
		fromName = "SchoolHub"
	}

	svc := &NotificationService{
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   apiKey != "",
	}
	if svc.enabled {
		svc.client = sendgrid.NewSendClient(apiKey)
	} else {
		log.Println("⚠️ SENDGRID_API_KEY not set, emails will be logged only")
	}
	return svc
}

// IsEnabled checks if email delivery is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// send delivers one email, falling back to a log line when disabled.
// Delivery failures are logged, never propagated; notifications are
// best-effort on every path that sends them.
func (s *NotificationService) send(ctx context.Context, toEmail, toName, subject, plainText string) {
	if !s.enabled {
		log.Printf("📧 [email disabled] to=%s subject=%q", toEmail, subject)
		return
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, plainText)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("❌ Failed to send email to %s: %v", toEmail, err)
		return
	}
	if resp.StatusCode >= 400 {
		log.Printf("❌ SendGrid rejected email to %s: status %d", toEmail, resp.StatusCode)
		return
	}
	log.Printf("✅ Email sent to %s: %s", toEmail, subject)
}

// SendWelcomeEmail sends login credentials to a newly provisioned student
func (s *NotificationService) SendWelcomeEmail(ctx context.Context, email, name, tempPassword string) {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour admission has been approved and a student account has been created.\n\nLogin email: %s\nTemporary password: %s\n\nPlease sign in and change your password.\n",
		name, email, tempPassword,
	)
	s.send(ctx, email, name, "Your admission has been approved", body)
}

// SendAdmissionRejected informs an applicant of rejection
func (s *NotificationService) SendAdmissionRejected(ctx context.Context, email, name, remark string) {
	body := fmt.Sprintf("Hello %s,\n\nWe are sorry to inform you that your admission application was not successful.\n", name)
	if remark != "" {
		body += fmt.Sprintf("\nRemark: %s\n", remark)
	}
	s.send(ctx, email, name, "Admission application update", body)
}

// SendPaymentReceipt confirms a verified fee payment
func (s *NotificationService) SendPaymentReceipt(ctx context.Context, email, name string, amount float64, referenceNo string) {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour fee payment of %.2f has been received and verified.\n",
		name, amount,
	)
	if referenceNo != "" {
		body += fmt.Sprintf("Reference: %s\n", referenceNo)
	}
	s.send(ctx, email, name, "Fee payment received", body)
}

// SendOverdueNotice reminds a member about an overdue book
func (s *NotificationService) SendOverdueNotice(ctx context.Context, email, name, bookTitle string, daysOverdue int, fine float64) {
	body := fmt.Sprintf(
		"Hello %s,\n\nThe book %q is %d day(s) overdue. The accrued fine is currently %.2f.\nPlease return it to the library as soon as possible.\n",
		name, bookTitle, daysOverdue, fine,
	)
	s.send(ctx, email, name, "Library book overdue", body)
}
