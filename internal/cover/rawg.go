package cover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// RAWG API base (public, keyed)
const rawgBase = "https://api.rawg.io/api"

// SearchClient looks a game title up on RAWG and returns the first
// result's background image URL.
type SearchClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	warnOnce sync.Once
}

func NewSearchClient(apiKey string) *SearchClient {
	return &SearchClient{
		BaseURL: rawgBase,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 12 * time.Second},
	}
}

type rawgResponse struct {
	Count   int `json:"count"`
	Results []struct {
		Name            string `json:"name"`
		BackgroundImage string `json:"background_image"`
	} `json:"results"`
}

// Search returns the cover URL for title, or nil when there is no match.
// A missing API key is a configuration warning, not an error: every
// lookup degrades to "no image" while the rest of the service works.
func (s *SearchClient) Search(ctx context.Context, title string) (*string, error) {
	if s.APIKey == "" {
		s.warnOnce.Do(func() {
			log.Println("[rawg] API key missing; set BACKLOGR_RAWG_API_KEY to enable cover lookups")
		})
		return nil, nil
	}

	u, err := url.Parse(s.BaseURL + "/games")
	if err != nil {
		return nil, fmt.Errorf("rawg: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("key", s.APIKey)
	q.Set("search", title)
	q.Set("page_size", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("rawg: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rawg: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rawg: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed rawgResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("rawg: decode: %w", err)
	}

	if len(parsed.Results) == 0 || parsed.Results[0].BackgroundImage == "" {
		return nil, nil
	}
	img := parsed.Results[0].BackgroundImage
	return &img, nil
}
