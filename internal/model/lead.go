package model

import "time"

// LeadSource tells where a lead came from.
type LeadSource string

const (
	LeadSourceWebsite     LeadSource = "WEBSITE"
	LeadSourceWishlist    LeadSource = "WISHLIST"
	LeadSourceContactForm LeadSource = "CONTACT_FORM"
	LeadSourcePhone       LeadSource = "PHONE"
	LeadSourceChat        LeadSource = "CHAT"
	LeadSourceSocial      LeadSource = "SOCIAL"
	LeadSourceWalkIn      LeadSource = "WALK_IN"
)

// LeadSources lists every valid source in display order.
var LeadSources = []LeadSource{
	LeadSourceWebsite,
	LeadSourceWishlist,
	LeadSourceContactForm,
	LeadSourcePhone,
	LeadSourceChat,
	LeadSourceSocial,
	LeadSourceWalkIn,
}

func (s LeadSource) Valid() bool {
	for _, v := range LeadSources {
		if s == v {
			return true
		}
	}
	return false
}

// LeadStatus is the pipeline state of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusScheduled LeadStatus = "SCHEDULED"
	LeadStatusConverted LeadStatus = "CONVERTED"
	LeadStatusLost      LeadStatus = "LOST"
)

// LeadStatuses lists every valid status in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusScheduled,
	LeadStatusConverted,
	LeadStatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Lead struct {
	Base
	Name    string     `json:"name"`
	Email   string     `json:"email" gorm:"index;not null"`
	Phone   string     `json:"phone"`
	Message string     `json:"message" gorm:"type:text"`
	Source  LeadSource `json:"source" gorm:"size:20;index;not null"`
	Status  LeadStatus `json:"status" gorm:"size:20;index;not null;default:'NEW'"`

	// Score is computed once when the lead is created.
	Score int `json:"score" gorm:"not null;default:0"`

	WishlistID string `json:"wishlist_id,omitempty" gorm:"type:varchar(36);index"`
	CustomerID string `json:"customer_id,omitempty" gorm:"type:varchar(36);index"`

	UTMSource   string `json:"utm_source,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`

	AssignedTo  string     `json:"assigned_to,omitempty" gorm:"type:varchar(36);index"`
	ContactedAt *time.Time `json:"contacted_at,omitempty"`

	Notes []LeadNote `json:"notes,omitempty" gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
}

type LeadNote struct {
	Base
	LeadID   string `json:"lead_id" gorm:"type:varchar(36);index;not null"`
	AuthorID string `json:"author_id" gorm:"type:varchar(36)"`
	Body     string `json:"body" gorm:"type:text;not null"`
}
