// Package notify tells the sales team about new leads by email and WhatsApp.
package notify

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"storefront_backend/internal/model"
	"storefront_backend/pkg/email"
	"storefront_backend/pkg/utils/phone"
)

const whatsAppMessagePreview = 120

// Payload describes a freshly scored lead.
type Payload struct {
	Lead          model.Lead
	Category      string
	WishlistItems int
	WishlistTotal float64
}

// LeadMailer is the part of email.EmailService the notifier uses.
type LeadMailer interface {
	SendLeadNotificationEmail(to string, data email.LeadNotificationData) error
}

// TemplateSender is the part of WhatsAppClient the notifier uses.
type TemplateSender interface {
	SendTemplate(ctx context.Context, to string, params ...string) error
}

type Config struct {
	AdminEmail    string
	WhatsAppTo    string
	DefaultRegion string
}

// Notifier fans a lead out to every configured channel. Delivery is best
// effort: failures are logged and never returned.
type Notifier struct {
	mailer   LeadMailer
	whatsapp TemplateSender
	cfg      Config
}

// NewNotifier accepts nil for channels that are not set up.
func NewNotifier(mailer LeadMailer, whatsapp TemplateSender, cfg Config) *Notifier {
	return &Notifier{mailer: mailer, whatsapp: whatsapp, cfg: cfg}
}

func (n *Notifier) NotifyNewLead(ctx context.Context, p Payload) {
	if n.mailer != nil && n.cfg.AdminEmail != "" {
		if err := n.mailer.SendLeadNotificationEmail(n.cfg.AdminEmail, EmailData(p)); err != nil {
			log.Printf("Could not send lead notification email for %s: %v", p.Lead.ID, err)
		}
	}

	if n.whatsapp != nil && n.cfg.WhatsAppTo != "" {
		to, err := phone.WhatsAppRecipient(n.cfg.WhatsAppTo, n.cfg.DefaultRegion)
		if err != nil {
			log.Printf("Invalid WHATSAPP_NOTIFY_TO %q: %v", n.cfg.WhatsAppTo, err)
			return
		}
		if err := n.whatsapp.SendTemplate(ctx, to, WhatsAppParams(p, n.cfg.DefaultRegion)...); err != nil {
			log.Printf("Could not send lead notification to WhatsApp for %s: %v", p.Lead.ID, err)
		}
	}
}

func EmailData(p Payload) email.LeadNotificationData {
	return email.LeadNotificationData{
		LeadID:        p.Lead.ID,
		LeadName:      p.Lead.Name,
		LeadEmail:     p.Lead.Email,
		LeadPhone:     p.Lead.Phone,
		LeadMessage:   p.Lead.Message,
		Source:        string(p.Lead.Source),
		Score:         p.Lead.Score,
		Category:      p.Category,
		WishlistItems: p.WishlistItems,
		WishlistTotal: p.WishlistTotal,
		UTMSource:     p.Lead.UTMSource,
		UTMCampaign:   p.Lead.UTMCampaign,
	}
}

// WhatsAppParams fills the new-lead template: name, score line, contact,
// message preview.
func WhatsAppParams(p Payload, region string) []string {
	name := p.Lead.Name
	if name == "" {
		name = p.Lead.Email
	}

	contact := p.Lead.Email
	if p.Lead.Phone != "" {
		if e164, err := phone.NormalizeE164(p.Lead.Phone, region); err == nil {
			contact = e164
		} else {
			contact = p.Lead.Phone
		}
	}

	message := p.Lead.Message
	if utf8.RuneCountInString(message) > whatsAppMessagePreview {
		message = string([]rune(message)[:whatsAppMessagePreview]) + "…"
	}
	if message == "" {
		message = "-"
	}

	return []string{
		name,
		fmt.Sprintf("%s %d/100 via %s", p.Category, p.Lead.Score, p.Lead.Source),
		contact,
		message,
	}
}
