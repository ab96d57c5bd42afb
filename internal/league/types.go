package league

// Member is a league roster entry. Rating drives the initial box seeding;
// the membership, rating-link and consent flags feed substitute
// eligibility checks.
type Member struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	IsMember     bool    `json:"is_member"`
	RatingLinkID string  `json:"rating_link_id,omitempty"`
	SubConsent   bool    `json:"sub_consent"`
	SubsUsed     int     `json:"subs_used"`
}
