package model

// NetworkCandidate is a subreddit ranked by how strongly misinformation
// posters tie it to other subreddits.
type NetworkCandidate struct {
	Subreddit        string `json:"subreddit" yaml:"subreddit"`
	AssociationCount int    `json:"association_count" yaml:"association_count"`
	Posters          int    `json:"posters" yaml:"posters"`
}

// CandidateColumns is the header of the user_data sheet.
var CandidateColumns = []string{"Subreddit", "Association Count", "# of MisInfo Posters"}
