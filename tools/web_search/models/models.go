package models

// Result is the uniform shape every search provider normalizes into.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
