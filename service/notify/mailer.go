package notify

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/legalease/legalease-server/cmd/models"
	"github.com/legalease/legalease-server/cmd/utils"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP. The booking core never calls it
// directly; handlers fire it after a successful write.
type Mailer struct {
	host string
	port int
	user string
	pass string
}

// NewMailerFromEnv builds a Mailer from SMTP_* environment variables. An
// unset SMTP_HOST means mail is not configured for this deployment.
func NewMailerFromEnv() (*Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, errors.New("SMTP_HOST not set")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port: %v", err)
	}
	return &Mailer{
		host: host,
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
	}, nil
}

func (m *Mailer) SendBookingConfirmation(email, name string, a *models.Appointment) error {
	return m.send(email, "Your consultation is booked", bookingConfirmationBody(name, a))
}

func (m *Mailer) SendPaymentReceipt(email, name string, a *models.Appointment, p *models.AppointmentPayment) error {
	return m.send(email, "Payment received", paymentReceiptBody(name, a, p))
}

func bookingConfirmationBody(name string, a *models.Appointment) string {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour %s consultation on %s at %s is booked (appointment #%d, %s).",
		name, a.Mode, a.ScheduledDate.Format("2006-01-02"), a.ScheduledTime, a.ID,
		utils.FormatPrice(a.Amount),
	)
	if a.MeetingLink != "" {
		body += "\n\nJoin link: " + a.MeetingLink
	}
	return body
}

func paymentReceiptBody(name string, a *models.Appointment, p *models.AppointmentPayment) string {
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received your %s payment of %s for appointment #%d (%s consultation on %s).",
		name, p.Method, utils.FormatPrice(p.Amount), a.ID, a.Mode,
		a.ScheduledDate.Format("2006-01-02"),
	)
	if p.GatewayPaymentID != "" {
		body += "\n\nPayment reference: " + p.GatewayPaymentID
	}
	return body
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}
