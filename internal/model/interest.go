package model

import "time"

// Interest is a taggable topic users subscribe to and events are organized
// under. MinAttendees is the per-interest headcount threshold the demand
// estimator divides by when converting expected attendance into event
// capacity.
type Interest struct {
	ID           int64  `json:"iid"`
	Name         string `json:"interest"`
	MinAttendees int    `json:"min_attendees"`
	UserCount    int    `json:"user_count"`
	EventCount   int    `json:"event_count"`
}

// UserStats carries the per-user acceptance history the demand estimator
// consumes. Invariant: TotalAccepted <= TotalSeen.
type UserStats struct {
	TotalSeen     int `json:"total_seen"`
	TotalAccepted int `json:"total_accepted"`
}

// User is an account row. Password holds the already-hashed credential;
// hashing happens upstream of the store.
type User struct {
	ID        int64  `json:"uid"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	UserStats
}

// FeedEvent is a stored event as the feed and lookup endpoints serve it.
type FeedEvent struct {
	EID          string    `json:"eid"`
	InterestID   int64     `json:"iid"`
	Name         string    `json:"name"`
	Datetime     time.Time `json:"datetime"`
	Description  string    `json:"description"`
	Cost         float64   `json:"cost"`
	NumAttendees int       `json:"numAttendees"`
}
