// Package scoring rates how likely a lead is to buy.
//
// A lead earns points from a fixed table of rules. Score sums them and caps
// the result at 100; Breakdown reports the same rules by label. Both read the
// product and lead collections once per call, so a score reflects the
// repository as it was at that instant.
package scoring

import (
	"context"
	"log"

	"storefront_backend/internal/model"
)

const MaxScore = 100

// Products is the read contract the engine needs for wishlist pricing.
type Products interface {
	GetAll(ctx context.Context) ([]model.Product, error)
}

// Leads is the read contract the engine needs for sibling lookups.
type Leads interface {
	GetAll(ctx context.Context) ([]model.Lead, error)
}

type Engine struct {
	products Products
	leads    Leads
}

func NewEngine(products Products, leads Leads) *Engine {
	return &Engine{products: products, leads: leads}
}

// Score computes the lead's score in [0,100]. customerID overrides
// lead.CustomerID when non-empty. wishlist may be nil.
func (e *Engine) Score(ctx context.Context, lead *model.Lead, wishlist *model.Wishlist, customerID string) int {
	total := 0
	for _, f := range e.evaluate(ctx, lead, wishlist, customerID) {
		total += f.Points
	}
	return clamp(total)
}

// Breakdown lists every rule the lead triggers. Only lead.CustomerID is used
// to resolve the customer.
func (e *Engine) Breakdown(ctx context.Context, lead *model.Lead, wishlist *model.Wishlist) Breakdown {
	factors := e.evaluate(ctx, lead, wishlist, "")
	b := make(Breakdown, len(factors))
	for _, f := range factors {
		b[f.Label] = f.Points
	}
	return b
}

// Factors is Breakdown in rule order.
func (e *Engine) Factors(ctx context.Context, lead *model.Lead, wishlist *model.Wishlist) []Factor {
	return e.evaluate(ctx, lead, wishlist, "")
}

// WishlistTotal sums the current prices of the wishlist's products.
func (e *Engine) WishlistTotal(ctx context.Context, wishlist *model.Wishlist) float64 {
	if wishlist == nil || len(wishlist.Items) == 0 {
		return 0
	}
	return e.wishlistTotal(ctx, wishlist)
}

func (e *Engine) evaluate(ctx context.Context, lead *model.Lead, wishlist *model.Wishlist, customerID string) []Factor {
	if lead == nil {
		return nil
	}

	in := &input{lead: lead, wishlist: wishlist, customerID: customerID}
	if in.customerID == "" {
		in.customerID = lead.CustomerID
	}

	if wishlist != nil && len(wishlist.Items) > 0 {
		in.wishlistTotal = e.wishlistTotal(ctx, wishlist)
	}
	if in.customerID != "" || lead.Email != "" {
		in.siblings = e.siblings(ctx, lead, in.customerID)
	}

	var factors []Factor
	for _, r := range rules {
		if points := r.points(in); points > 0 {
			factors = append(factors, Factor{Label: r.label, Points: points})
		}
	}
	return factors
}

func (e *Engine) wishlistTotal(ctx context.Context, wishlist *model.Wishlist) float64 {
	products, err := e.products.GetAll(ctx)
	if err != nil {
		log.Printf("scoring: could not load products, wishlist value counts as 0: %v", err)
		return 0
	}

	prices := make(map[string]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	var total float64
	for _, item := range wishlist.Items {
		// A deleted product is worth nothing.
		total += prices[item.ProductID]
	}
	return total
}

// siblings returns every other lead sharing the resolved customer id or the
// lead's email.
func (e *Engine) siblings(ctx context.Context, lead *model.Lead, customerID string) []model.Lead {
	all, err := e.leads.GetAll(ctx)
	if err != nil {
		log.Printf("scoring: could not load leads, sibling bonuses skipped: %v", err)
		return nil
	}

	var out []model.Lead
	for _, other := range all {
		if other.ID == lead.ID {
			continue
		}
		sameCustomer := customerID != "" && other.CustomerID == customerID
		sameEmail := lead.Email != "" && other.Email == lead.Email
		if sameCustomer || sameEmail {
			out = append(out, other)
		}
	}
	return out
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
