package googlecse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pndinxx/courserank/tools/web_search/models"
)

type Search struct {
	ApiKey   string
	EngineID string
	Client   *http.Client
}

func (s Search) Search(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://developers.google.com/custom-search/v1/overview
	params := url.Values{}
	params.Set("key", s.ApiKey)
	params.Set("cx", s.EngineID)
	params.Set("q", q)
	params.Set("num", fmt.Sprintf("%d", k))

	req, _ := http.NewRequestWithContext(ctx, "GET", "https://www.googleapis.com/customsearch/v1?"+params.Encode(), nil)
	httpc := s.Client
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google cse status %d", resp.StatusCode)
	}
	var raw struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	var out []models.Result
	for i, it := range raw.Items {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: it.Title, URL: it.Link, Snippet: it.Snippet})
	}
	return out, nil
}
