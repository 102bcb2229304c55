package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendTemporaryPassword(toEmail, fullName, storeName, password string) error
	SendInvoiceNotification(toEmail, invoiceNumber string, totalAmount int64, dueDate string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderEmail, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		clientURL:   clientURL,
	}
}

func (s *emailService) SendTemporaryPassword(toEmail, fullName, storeName, password string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your store is ready")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Your store <strong>%s</strong> has been provisioned with a 14-day trial.</p>
			<p>Sign in with this temporary password and change it on first login:</p>
			<h1 style="color: #4CAF50; letter-spacing: 3px;">%s</h1>
			<p><a href="%s/login">Open your dashboard</a></p>
			<p>If you didn't request this, please ignore this email.</p>
		</div>
	`, fullName, storeName, password, s.clientURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send temporary password to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Temporary password sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendInvoiceNotification(toEmail, invoiceNumber string, totalAmount int64, dueDate string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Invoice %s", invoiceNumber))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Invoice %s</h2>
			<p>Total due: <strong>Rp %d</strong></p>
			<p>Due date: %s</p>
			<p><a href="%s/billing/invoices" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Pay now</a></p>
		</div>
	`, invoiceNumber, totalAmount, dueDate, s.clientURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send invoice %s to %s: %v\n", invoiceNumber, toEmail, err)
		return err
	}

	return nil
}
