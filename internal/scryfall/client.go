package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is a minimal Scryfall search client used to fill the local card
// cache. Scryfall needs no authentication.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CardData mirrors the subset of a Scryfall card object the cache keeps.
type CardData struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	ManaCost   string            `json:"mana_cost"`
	CMC        float64           `json:"cmc"`
	TypeLine   string            `json:"type_line"`
	OracleText string            `json:"oracle_text"`
	Colors     []string          `json:"colors"`
	Keywords   []string          `json:"keywords"`
	ImageURIs  map[string]string `json:"image_uris"`
	Power      *string           `json:"power"`
	Toughness  *string           `json:"toughness"`
	Rarity     string            `json:"rarity"`
	Set        string            `json:"set"`
	SetName    string            `json:"set_name"`
}

// PreferredImage picks art_crop for compact display, falling back to the
// smaller renditions.
func (d CardData) PreferredImage() string {
	for _, key := range []string{"art_crop", "small", "normal"} {
		if uri, ok := d.ImageURIs[key]; ok && uri != "" {
			return uri
		}
	}
	return ""
}

type searchResponse struct {
	Data []CardData `json:"data"`
}

// SearchExact searches for cards whose name matches the query exactly.
func (c *Client) SearchExact(ctx context.Context, query string) ([]CardData, error) {
	return c.search(ctx, fmt.Sprintf("!%q", query))
}

// Search runs a broad name search ordered by name.
func (c *Client) Search(ctx context.Context, query string) ([]CardData, error) {
	return c.search(ctx, query)
}

func (c *Client) search(ctx context.Context, query string) ([]CardData, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("order", "name")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/cards/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scryfall request failed: %w", err)
	}
	defer resp.Body.Close()

	// Scryfall answers 404 for searches with no matches.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	return result.Data, nil
}
