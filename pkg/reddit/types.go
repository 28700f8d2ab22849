package reddit

import (
	"encoding/json"
	"time"
)

// Sort selects a subreddit listing.
type Sort string

// Listing sorts.
const (
	SortTop Sort = "top"
	SortHot Sort = "hot"
	SortNew Sort = "new"
)

// Query selects submissions from one subreddit.
type Query struct {
	Subreddit string
	Sort      Sort
	// Window is the time filter for top listings ("year", "month", ...).
	Window string
	// Limit caps the number of submissions yielded. Zero means one page.
	Limit int
}

// Submission is a link or self post.
type Submission struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	Domain      string  `json:"domain"`
	IsSelf      bool    `json:"is_self"`
	CreatedUTC  float64 `json:"created_utc"`
	Ups         int     `json:"ups"`
	Downs       int     `json:"downs"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

// Created returns the creation time in UTC.
func (s Submission) Created() time.Time {
	return unixFloat(s.CreatedUTC)
}

// Comment is a user comment.
type Comment struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
}

// Created returns the creation time in UTC.
func (c Comment) Created() time.Time {
	return unixFloat(c.CreatedUTC)
}

func unixFloat(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

type listing struct {
	Kind string      `json:"kind"`
	Data listingData `json:"data"`
}

type listingData struct {
	After    string  `json:"after"`
	Children []thing `json:"children"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}
