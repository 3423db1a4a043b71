package email

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

// Dialer delivers composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	dialer    Dialer
	from      string
	templates *template.Template
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type WelcomeEmailData struct {
	Name string
}

type LeadNotificationData struct {
	LeadID        string
	LeadName      string
	LeadEmail     string
	LeadPhone     string
	LeadMessage   string
	Source        string
	Score         int
	Category      string
	WishlistItems int
	WishlistTotal float64
	UTMSource     string
	UTMCampaign   string
}

type LeadDigestRow struct {
	Name     string
	Email    string
	Source   string
	Score    int
	Category string
}

type LeadDigestData struct {
	Date       time.Time
	Total      int
	Hot        []LeadDigestRow
	Warm       []LeadDigestRow
	Cold       []LeadDigestRow
	AverageAll int
}

func NewEmailService(cfg SMTPConfig) (*EmailService, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	return NewEmailServiceWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From)
}

func NewEmailServiceWithDialer(d Dialer, from string) (*EmailService, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %w", err)
	}

	return &EmailService{
		dialer:    d,
		from:      from,
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}

	log.Printf("Sent %q to %s", templateName, to)
	return nil
}

func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{
		Name: name,
	}
	return s.sendTemplateEmail(email, "Welcome to the store! 🎉", "welcome.html", data)
}

func (s *EmailService) SendLeadNotificationEmail(to string, data LeadNotificationData) error {
	subject := fmt.Sprintf("New %s lead (%d) from %s 📋", data.Category, data.Score, data.LeadEmail)
	return s.sendTemplateEmail(to, subject, "lead_notification.html", data)
}

func (s *EmailService) SendLeadDigest(to string, data LeadDigestData) error {
	subject := fmt.Sprintf("Lead digest for %s: %d new, %d hot 📊", data.Date.Format("Jan 2"), data.Total, len(data.Hot))
	return s.sendTemplateEmail(to, subject, "lead_digest.html", data)
}
