package domain

// Keyword is one subscription document: a normalized token and the set of
// subscribers interested in it.
type Keyword struct {
	Name        string   `json:"keyword"`
	Subscribers []string `json:"subscribers"`
}
