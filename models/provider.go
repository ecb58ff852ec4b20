package models

import "time"

// ProviderProfile is a provider's public booking-eligibility and reputation record.
// Rating, ReviewCount and RatingTotal are only written by the rating transaction.
type ProviderProfile struct {
	ProviderID        string    `bson:"providerId" json:"providerId" firestore:"providerId"`
	DisplayName       string    `bson:"displayName" json:"displayName" firestore:"displayName"`
	Bio               string    `bson:"bio" json:"bio" firestore:"bio"`
	PhotoURL          string    `bson:"photoUrl,omitempty" json:"photoUrl,omitempty" firestore:"photoUrl,omitempty"`
	Services          []string  `bson:"services" json:"services" firestore:"services"`
	AcceptingBookings bool      `bson:"acceptingBookings" json:"acceptingBookings" firestore:"acceptingBookings"`
	IsOnline          bool      `bson:"isOnline" json:"isOnline" firestore:"isOnline"`
	IsApproved        bool      `bson:"isApproved" json:"isApproved" firestore:"isApproved"`
	Rating            float64   `bson:"rating" json:"rating" firestore:"rating"`
	ReviewCount       int       `bson:"reviewCount" json:"reviewCount" firestore:"reviewCount"`
	RatingTotal       int       `bson:"ratingTotal" json:"-" firestore:"ratingTotal"`
	DeviceToken       string    `bson:"deviceToken,omitempty" json:"-" firestore:"deviceToken,omitempty"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
}

// Bookable reports whether the provider may currently receive booking requests.
func (p *ProviderProfile) Bookable() bool {
	return p.IsApproved && p.IsOnline && p.AcceptingBookings
}

// Offers reports whether the provider lists the given catalog service.
func (p *ProviderProfile) Offers(service string) bool {
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return false
}

// Aggregate returns the rating fields of the profile.
func (p *ProviderProfile) Aggregate() RatingAggregate {
	return RatingAggregate{
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		RatingTotal: p.RatingTotal,
	}
}

// RatingAggregate is the running-average state folded by the rating transaction.
type RatingAggregate struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	RatingTotal int     `json:"-"`
}

// ProviderPatch is a partial update of provider-editable fields.
// Nil fields are left untouched. Rating fields are not patchable.
type ProviderPatch struct {
	DisplayName       *string
	Bio               *string
	PhotoURL          *string
	Services          *[]string
	IsOnline          *bool
	AcceptingBookings *bool
	DeviceToken       *string
	UpdatedAt         time.Time
}

// Empty reports whether the patch changes nothing.
func (p ProviderPatch) Empty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.PhotoURL == nil && p.Services == nil &&
		p.IsOnline == nil && p.AcceptingBookings == nil && p.DeviceToken == nil
}

// Apply copies the set fields of the patch onto p.
func (p ProviderPatch) Apply(profile *ProviderProfile) {
	if p.DisplayName != nil {
		profile.DisplayName = *p.DisplayName
	}
	if p.Bio != nil {
		profile.Bio = *p.Bio
	}
	if p.PhotoURL != nil {
		profile.PhotoURL = *p.PhotoURL
	}
	if p.Services != nil {
		profile.Services = append([]string(nil), (*p.Services)...)
	}
	if p.IsOnline != nil {
		profile.IsOnline = *p.IsOnline
	}
	if p.AcceptingBookings != nil {
		profile.AcceptingBookings = *p.AcceptingBookings
	}
	if p.DeviceToken != nil {
		profile.DeviceToken = *p.DeviceToken
	}
	profile.UpdatedAt = p.UpdatedAt
}

// ProviderSummary is the slice of a profile shown to customers while booking.
type ProviderSummary struct {
	ProviderID  string   `json:"providerId"`
	DisplayName string   `json:"displayName"`
	Bio         string   `json:"bio,omitempty"`
	PhotoURL    string   `json:"photoUrl,omitempty"`
	Services    []string `json:"services"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
}

// Summary converts a profile to its customer-facing summary.
func (p *ProviderProfile) Summary() ProviderSummary {
	return ProviderSummary{
		ProviderID:  p.ProviderID,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		PhotoURL:    p.PhotoURL,
		Services:    p.Services,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
	}
}
