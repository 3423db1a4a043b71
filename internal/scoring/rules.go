package scoring

import (
	"unicode/utf8"

	"storefront_backend/internal/model"
)

const (
	LabelWishlistItems    = "Wishlist items"
	LabelWishlistValue    = "Wishlist value"
	LabelPhone            = "Phone provided"
	LabelDetailedMessage  = "Detailed message"
	LabelWishlistSource   = "Wishlist submission"
	LabelCampaign         = "Campaign tracking"
	LabelCustomerAccount  = "Customer account"
	LabelRepeatContact    = "Repeat contact"
	LabelPreviouslyBought = "Previous conversion"
)

const detailedMessageLength = 20

// input is everything the rules look at, resolved once per evaluation.
type input struct {
	lead          *model.Lead
	wishlist      *model.Wishlist
	customerID    string
	wishlistTotal float64
	siblings      []model.Lead
}

type rule struct {
	label  string
	points func(in *input) int
}

var rules = []rule{
	{LabelWishlistItems, wishlistItemPoints},
	{LabelWishlistValue, wishlistValuePoints},
	{LabelPhone, func(in *input) int {
		if in.lead.Phone != "" {
			return 10
		}
		return 0
	}},
	{LabelDetailedMessage, func(in *input) int {
		if utf8.RuneCountInString(in.lead.Message) > detailedMessageLength {
			return 10
		}
		return 0
	}},
	{LabelWishlistSource, func(in *input) int {
		if in.lead.Source == model.LeadSourceWishlist {
			return 5
		}
		return 0
	}},
	{LabelCampaign, func(in *input) int {
		if in.lead.UTMSource != "" || in.lead.UTMCampaign != "" {
			return 5
		}
		return 0
	}},
	{LabelCustomerAccount, func(in *input) int {
		if in.customerID != "" {
			return 8
		}
		return 0
	}},
	{LabelRepeatContact, func(in *input) int {
		return min(len(in.siblings)*3, 7)
	}},
	{LabelPreviouslyBought, func(in *input) int {
		for _, s := range in.siblings {
			if s.Status == model.LeadStatusConverted {
				return 10
			}
		}
		return 0
	}},
}

func hasItems(in *input) bool {
	return in.wishlist != nil && len(in.wishlist.Items) > 0
}

func wishlistItemPoints(in *input) int {
	if !hasItems(in) {
		return 0
	}
	return min(len(in.wishlist.Items)*10, 40)
}

// valueTiers is checked top down; the first floor the total reaches wins.
var valueTiers = []struct {
	floor  float64
	points int
}{
	{10000, 30},
	{5000, 25},
	{2000, 20},
	{1000, 15},
	{500, 10},
}

func wishlistValuePoints(in *input) int {
	if !hasItems(in) {
		return 0
	}
	return ValuePoints(in.wishlistTotal)
}

// ValuePoints maps a wishlist total to its value tier.
func ValuePoints(total float64) int {
	for _, tier := range valueTiers {
		if total >= tier.floor {
			return tier.points
		}
	}
	if total > 0 {
		return 5
	}
	return 0
}
