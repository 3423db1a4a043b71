package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"storefront_backend/internal/middleware"
	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"
	"storefront_backend/internal/scoring"
	"storefront_backend/pkg/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeadInput struct {
	Name        string `json:"name" validate:"max=200"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"max=40"`
	Message     string `json:"message" validate:"max=5000"`
	Source      string `json:"source"`
	UTMSource   string `json:"utm_source" validate:"max=100"`
	UTMCampaign string `json:"utm_campaign" validate:"max=100"`
	UTMMedium   string `json:"utm_medium" validate:"max=100"`
}

type LeadStatusInput struct {
	Status string `json:"status" validate:"required"`
}

type LeadAssignInput struct {
	UserID string `json:"user_id"`
}

type LeadNoteInput struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// LeadNotifier is told about every lead right after it is stored.
type LeadNotifier interface {
	NotifyNewLead(ctx context.Context, p notify.Payload)
}

type LeadController struct {
	store    *repository.Store
	engine   *scoring.Engine
	notifier LeadNotifier
}

// NewLeadController accepts a nil notifier.
func NewLeadController(store *repository.Store, engine *scoring.Engine, notifier LeadNotifier) *LeadController {
	return &LeadController{store: store, engine: engine, notifier: notifier}
}

// leadView is a lead as the back office sees it.
type leadView struct {
	model.Lead
	Category scoring.Category `json:"category"`
}

func viewOf(lead model.Lead) leadView {
	return leadView{Lead: lead, Category: scoring.CategoryOf(lead.Score)}
}

func (input *LeadInput) toLead(source model.LeadSource) *model.Lead {
	return &model.Lead{
		Name:        strings.TrimSpace(input.Name),
		Email:       normalizeEmail(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Message:     strings.TrimSpace(input.Message),
		Source:      source,
		UTMSource:   input.UTMSource,
		UTMCampaign: input.UTMCampaign,
		UTMMedium:   input.UTMMedium,
	}
}

// CreateLead handles the public contact form.
func (l *LeadController) CreateLead(c *fiber.Ctx) error {
	input := new(LeadInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	source := model.LeadSourceContactForm
	if input.Source != "" {
		source = model.LeadSource(strings.ToUpper(input.Source))
		if !source.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":         "Invalid source value",
				"valid_sources": model.LeadSources,
			})
		}
	}

	return l.intake(c, input.toLead(source), nil)
}

// CheckoutWishlist turns a shared wishlist into a lead.
func (l *LeadController) CheckoutWishlist(c *fiber.Ctx) error {
	wishlist, err := l.store.WishlistWithItems().FirstByField(c.UserContext(), "share_token", c.Params("token"))
	if err != nil {
		return storeError(err, "Wishlist not found")
	}
	if len(wishlist.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Wishlist is empty")
	}

	input := new(LeadInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	lead := input.toLead(model.LeadSourceWishlist)
	lead.WishlistID = wishlist.ID
	return l.intake(c, lead, wishlist)
}

// intake scores, stores and announces a new lead.
func (l *LeadController) intake(c *fiber.Ctx, lead *model.Lead, wishlist *model.Wishlist) error {
	ctx := c.UserContext()

	customerID := middleware.CurrentCustomerID(c)
	if customerID == "" {
		customerID = customerIDByEmail(ctx, l.store, lead.Email)
	}
	lead.CustomerID = customerID

	lead.ID = uuid.NewString()
	lead.Status = model.LeadStatusNew
	lead.Score = l.engine.Score(ctx, lead, wishlist, customerID)

	if err := l.store.Leads.Create(ctx, lead); err != nil {
		return err
	}

	category := scoring.CategoryOf(lead.Score)
	log.Printf("Lead %s created from %s with score %d (%s)", lead.ID, lead.Source, lead.Score, category)

	if l.notifier != nil {
		payload := notify.Payload{Lead: *lead, Category: string(category)}
		if wishlist != nil {
			payload.WishlistItems = len(wishlist.Items)
			payload.WishlistTotal = l.engine.WishlistTotal(ctx, wishlist)
		}
		l.notifier.NotifyNewLead(ctx, payload)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Thank you! Our team will contact you soon.",
		"id":      lead.ID,
	})
}

var leadSortColumns = map[string]string{
	"score":      "score",
	"created_at": "created_at",
}

// ListLeads supports ?status= ?source= ?category= ?sort=score|created_at
// ?order=asc|desc and pagination.
func (l *LeadController) ListLeads(c *fiber.Ctx) error {
	filter := repository.Filter{Where: map[string]interface{}{}}

	if status := c.Query("status"); status != "" {
		status := model.LeadStatus(strings.ToUpper(status))
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid status value")
		}
		filter.Where["status"] = status
	}
	if source := c.Query("source"); source != "" {
		source := model.LeadSource(strings.ToUpper(source))
		if !source.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid source value")
		}
		filter.Where["source"] = source
	}
	if category := c.Query("category"); category != "" {
		scope, err := categoryScope(category)
		if err != nil {
			return err
		}
		filter.Scopes = append(filter.Scopes, scope)
	}

	column, ok := leadSortColumns[c.Query("sort", "created_at")]
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid sort field")
	}
	direction := "DESC"
	if strings.EqualFold(c.Query("order"), "asc") {
		direction = "ASC"
	}
	filter.Order = column + " " + direction

	total, err := l.store.Leads.Count(c.UserContext(), filter)
	if err != nil {
		return err
	}

	limit, offset, page := pagination(c)
	filter.Limit, filter.Offset = limit, offset

	leads, err := l.store.Leads.Search(c.UserContext(), filter)
	if err != nil {
		return err
	}

	views := make([]leadView, 0, len(leads))
	for _, lead := range leads {
		views = append(views, viewOf(lead))
	}

	return c.JSON(fiber.Map{
		"data":  views,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func categoryScope(name string) (func(*gorm.DB) *gorm.DB, error) {
	for _, category := range scoring.Categories {
		if strings.EqualFold(string(category), name) {
			lo, hi := category.Range()
			return func(db *gorm.DB) *gorm.DB {
				return db.Where("score BETWEEN ? AND ?", lo, hi)
			}, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid category value")
}

func (l *LeadController) GetLead(c *fiber.Ctx) error {
	lead, err := l.store.Leads.WithOrdered("Notes", "created_at ASC").GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(err, "Lead not found")
	}
	return c.JSON(viewOf(*lead))
}

// UpdateLeadStatus moves a lead through the pipeline. The score is left as
// it was at creation.
func (l *LeadController) UpdateLeadStatus(c *fiber.Ctx) error {
	input := new(LeadStatusInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	status := model.LeadStatus(strings.ToUpper(input.Status))
	if !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":          "Invalid status value",
			"valid_statuses": model.LeadStatuses,
		})
	}

	lead, err := l.store.Leads.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(err, "Lead not found")
	}

	fields := map[string]interface{}{"status": status}
	if status == model.LeadStatusContacted && lead.ContactedAt == nil {
		fields["contacted_at"] = time.Now()
	}
	if err := l.store.Leads.UpdateFields(c.UserContext(), lead.ID, fields); err != nil {
		return storeError(err, "Lead not found")
	}

	lead, err = l.store.Leads.GetByID(c.UserContext(), lead.ID)
	if err != nil {
		return storeError(err, "Lead not found")
	}

	return c.JSON(fiber.Map{
		"message": "Lead status updated successfully",
		"lead":    viewOf(*lead),
	})
}

// AssignLead hands a lead to a back-office user. An empty user_id
// unassigns it.
func (l *LeadController) AssignLead(c *fiber.Ctx) error {
	input := new(LeadAssignInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	if input.UserID != "" {
		if _, err := l.store.Users.GetByID(c.UserContext(), input.UserID); err != nil {
			return storeError(err, "User not found")
		}
	}

	if err := l.store.Leads.UpdateFields(c.UserContext(), c.Params("id"), map[string]interface{}{
		"assigned_to": input.UserID,
	}); err != nil {
		return storeError(err, "Lead not found")
	}

	return c.JSON(fiber.Map{
		"message":     "Lead assigned successfully",
		"assigned_to": input.UserID,
	})
}

func (l *LeadController) AddNote(c *fiber.Ctx) error {
	input := new(LeadNoteInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	lead, err := l.store.Leads.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(err, "Lead not found")
	}

	note := &model.LeadNote{
		LeadID:   lead.ID,
		AuthorID: middleware.CurrentUser(c).Subject,
		Body:     strings.TrimSpace(input.Body),
	}
	if err := l.store.LeadNotes.Create(c.UserContext(), note); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

func (l *LeadController) DeleteLead(c *fiber.Ctx) error {
	if err := l.store.Leads.Delete(c.UserContext(), c.Params("id")); err != nil {
		return storeError(err, "Lead not found")
	}
	return c.JSON(fiber.Map{
		"message": "Lead deleted successfully",
	})
}

// GetLeadScore explains a lead's score. The factors are recomputed against
// the catalog and lead history as they are now, so current_score can drift
// from the stored score.
func (l *LeadController) GetLeadScore(c *fiber.Ctx) error {
	ctx := c.UserContext()

	lead, err := l.store.Leads.GetByID(ctx, c.Params("id"))
	if err != nil {
		return storeError(err, "Lead not found")
	}

	var wishlist *model.Wishlist
	if lead.WishlistID != "" {
		wishlist, err = l.store.WishlistWithItems().GetByID(ctx, lead.WishlistID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	factors := l.engine.Factors(ctx, lead, wishlist)
	if factors == nil {
		factors = []scoring.Factor{}
	}
	current := scoring.Total(factors)

	return c.JSON(fiber.Map{
		"lead_id":       lead.ID,
		"stored_score":  lead.Score,
		"current_score": current,
		"category":      scoring.CategoryOf(current),
		"factors":       factors,
		"recomputed_at": time.Now().UTC(),
	})
}

type LeadStats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	BySource       map[string]int64 `json:"by_source"`
	ByCategory     map[string]int64 `json:"by_category"`
	AverageScore   float64          `json:"average_score"`
	ConversionRate float64          `json:"conversion_rate"`
}

// GetLeadStats reports pipeline counts over every stored lead.
func (l *LeadController) GetLeadStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	stats := LeadStats{
		ByStatus:   make(map[string]int64, len(model.LeadStatuses)),
		BySource:   make(map[string]int64, len(model.LeadSources)),
		ByCategory: make(map[string]int64, len(scoring.Categories)),
	}

	var err error
	if stats.Total, err = l.store.Leads.Count(ctx, repository.Filter{}); err != nil {
		return err
	}

	for _, status := range model.LeadStatuses {
		n, err := l.store.Leads.Count(ctx, repository.Filter{Where: map[string]interface{}{"status": status}})
		if err != nil {
			return err
		}
		stats.ByStatus[string(status)] = n
	}

	for _, source := range model.LeadSources {
		n, err := l.store.Leads.Count(ctx, repository.Filter{Where: map[string]interface{}{"source": source}})
		if err != nil {
			return err
		}
		stats.BySource[string(source)] = n
	}

	for _, category := range scoring.Categories {
		scope, _ := categoryScope(string(category))
		n, err := l.store.Leads.Count(ctx, repository.Filter{Scopes: []func(*gorm.DB) *gorm.DB{scope}})
		if err != nil {
			return err
		}
		stats.ByCategory[string(category)] = n
	}

	if stats.Total > 0 {
		if err := l.store.DB.WithContext(ctx).Model(&model.Lead{}).
			Select("COALESCE(AVG(score), 0)").
			Scan(&stats.AverageScore).Error; err != nil {
			return err
		}
		stats.ConversionRate = float64(stats.ByStatus[string(model.LeadStatusConverted)]) / float64(stats.Total)
	}

	return c.JSON(stats)
}
