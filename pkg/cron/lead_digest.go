package cron

import (
	"context"
	"log"
	"sync"
	"time"

	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"
	"storefront_backend/internal/scoring"
	"storefront_backend/pkg/email"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const digestWindow = 24 * time.Hour

type DigestMailer interface {
	SendLeadDigest(to string, data email.LeadDigestData) error
}

// LeadDigest mails the sales inbox the leads of the last 24 hours grouped by
// category.
type LeadDigest struct {
	leads  *repository.Collection[model.Lead]
	mailer DigestMailer
	to     string
	now    func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

func NewLeadDigest(leads *repository.Collection[model.Lead], mailer DigestMailer, to string) *LeadDigest {
	return &LeadDigest{leads: leads, mailer: mailer, to: to, now: time.Now}
}

// Run sends the digest unless one went out in the last 23 hours or there is
// nothing to report.
func (d *LeadDigest) Run(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if !d.lastRun.IsZero() && now.Sub(d.lastRun) < 23*time.Hour {
		log.Printf("Lead digest already sent today, skipping...")
		return nil
	}

	since := now.Add(-digestWindow)
	leads, err := d.leads.Search(ctx, repository.Filter{
		Scopes: []func(*gorm.DB) *gorm.DB{func(db *gorm.DB) *gorm.DB {
			return db.Where("created_at >= ?", since)
		}},
		Order: "score DESC",
	})
	if err != nil {
		return err
	}

	log.Printf("Found %d leads since %s", len(leads), since.Format(time.RFC3339))
	if len(leads) == 0 {
		return nil
	}

	if err := d.mailer.SendLeadDigest(d.to, BuildDigest(since, leads)); err != nil {
		return err
	}
	d.lastRun = now
	return nil
}

// BuildDigest groups leads by score category.
func BuildDigest(since time.Time, leads []model.Lead) email.LeadDigestData {
	data := email.LeadDigestData{Date: since, Total: len(leads)}

	sum := 0
	for _, l := range leads {
		sum += l.Score
		category := scoring.CategoryOf(l.Score)
		row := email.LeadDigestRow{
			Name:     l.Name,
			Email:    l.Email,
			Source:   string(l.Source),
			Score:    l.Score,
			Category: string(category),
		}
		switch category {
		case scoring.Hot:
			data.Hot = append(data.Hot, row)
		case scoring.Warm:
			data.Warm = append(data.Warm, row)
		default:
			data.Cold = append(data.Cold, row)
		}
	}
	if len(leads) > 0 {
		data.AverageAll = sum / len(leads)
	}
	return data
}

// InitLeadDigestCron schedules the digest and starts the scheduler.
func InitLeadDigestCron(spec string, digest *LeadDigest) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		if err := digest.Run(context.Background()); err != nil {
			log.Printf("Could not send lead digest: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("Lead digest cron initialized (%s)", spec)
	return c, nil
}
