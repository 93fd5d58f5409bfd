// Package recipes suggests a recipe for a set of ingredients using a
// Spoonacular-compatible API.
package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Afrothundr/broccoli-scheduler/internal/report"
)

const defaultBaseURL = "https://api.spoonacular.com"

// Client is an HTTP client for the recipe API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a recipe client. An empty baseURL means the hosted
// Spoonacular API. If logger is nil, the default logger is used.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With(slog.String("component", "recipes_client")),
	}
}

type foundRecipe struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	UsedIngredients []ingredient `json:"usedIngredients"`
}

type ingredient struct {
	Name string `json:"name"`
}

type recipeInformation struct {
	SourceURL string `json:"sourceUrl"`
}

// Suggest finds the recipe that uses the most of the given ingredients and
// resolves its source URL. Returns an error when the API is unreachable or
// finds nothing; callers treat that as "no suggestion today".
func (c *Client) Suggest(ctx context.Context, ingredients []string) (*report.RecipeSuggestion, error) {
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("no ingredients to search with")
	}

	found, err := c.findByIngredients(ctx, ingredients)
	if err != nil {
		return nil, err
	}

	suggestion := &report.RecipeSuggestion{Title: found.Title}
	for _, ing := range found.UsedIngredients {
		suggestion.UsedIngredients = append(suggestion.UsedIngredients, ing.Name)
	}

	// The source URL is nice to have; its absence is not an error.
	info, err := c.information(ctx, found.ID)
	if err != nil {
		c.logger.Warn("failed to resolve recipe source url", "recipe_id", found.ID, "error", err)
	} else {
		suggestion.SourceURL = info.SourceURL
	}
	return suggestion, nil
}

// findByIngredients returns the best-ranked recipe for the ingredient list.
func (c *Client) findByIngredients(ctx context.Context, ingredients []string) (*foundRecipe, error) {
	query := url.Values{
		"apiKey":      {c.apiKey},
		"ingredients": {strings.Join(ingredients, ",")},
		"number":      {"1"},
		"ranking":     {"1"},
	}

	var found []foundRecipe
	if err := c.getJSON(ctx, "/recipes/findByIngredients?"+query.Encode(), &found); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no recipes found for ingredients %q", strings.Join(ingredients, ","))
	}
	return &found[0], nil
}

// information fetches recipe details by id.
func (c *Client) information(ctx context.Context, id int64) (*recipeInformation, error) {
	query := url.Values{"apiKey": {c.apiKey}}
	var info recipeInformation
	path := "/recipes/" + strconv.FormatInt(id, 10) + "/information?" + query.Encode()
	if err := c.getJSON(ctx, path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build recipe request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("recipe request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("recipe request returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode recipe response: %w", err)
	}
	return nil
}
