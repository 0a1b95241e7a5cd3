package model

// NeutralScore is the midpoint signal score substituted when a venue's raw
// metadata is absent or malformed.
const NeutralScore = 0.5

// CandidateOption is an ephemeral (idea, venue) pairing considered during a
// single planning run. Every field is populated at construction: the signal
// scores default to NeutralScore and the cost defaults through the baseline
// cost rules, so scoring never touches an absent value. Options are never
// persisted; the winner is assembled into an EventRow and the rest are
// discarded.
type CandidateOption struct {
	IdeaTitle     string  `json:"idea_title"`
	VenueName     string  `json:"venue_name"`
	Address       string  `json:"address"`
	Website       string  `json:"website"`
	MapsURL       string  `json:"maps_url"`
	Category      string  `json:"category"`
	PerPersonCost float64 `json:"per_person_cost"`
	Popularity    float64 `json:"popularity"`
	Proximity     float64 `json:"proximity"`
	Availability  float64 `json:"availability"`
}

// EventName synthesizes the display name an option would persist under,
// which is also the string compared against existing events for dedup.
func (o CandidateOption) EventName() string {
	return o.IdeaTitle + " @ " + o.VenueName
}

// PlanResult is what a single planning run returns alongside the row itself.
type PlanResult struct {
	Row                  EventRow        `json:"row"`
	Winner               CandidateOption `json:"winner"`
	IdeasGenerated       int             `json:"ideas_generated"`
	CandidatesConsidered int             `json:"candidates_considered"`
	UsedFallbackIdeas    bool            `json:"used_fallback_ideas"`
	UsedFallbackVenue    bool            `json:"used_fallback_venue"`
}
