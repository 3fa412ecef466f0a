package showcase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
)

// DevtoData carries a member's top articles by reactions.
type DevtoData struct {
	Articles       []DevtoArticle `json:"articles"`
	TotalArticles  int            `json:"totalArticles"`
	TotalReactions int            `json:"totalReactions"`
}

type DevtoArticle struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	PublishedAt    string   `json:"published_at"`
	Reactions      int      `json:"positive_reactions_count"`
	CommentsCount  int      `json:"comments_count"`
	CoverImage     string   `json:"cover_image"`
	Tags           []string `json:"tag_list"`
	ReadingMinutes int      `json:"reading_time_minutes"`
}

const devtoTopArticles = 4

// Devto fetches a member's articles, ranked by positive reactions, through
// the cache. The Dev.to API needs no token.
func (s *Service) Devto(ctx context.Context, username string) (DevtoData, error) {
	return cached(ctx, s, "showcase:devto:"+username, func() (DevtoData, error) {
		return s.fetchDevto(ctx, username)
	})
}

func (s *Service) fetchDevto(ctx context.Context, username string) (DevtoData, error) {
	endpoint := fmt.Sprintf("%s/articles?username=%s&per_page=30", s.devtoURL, url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return DevtoData{}, fmt.Errorf("build devto request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return DevtoData{}, fmt.Errorf("devto request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DevtoData{}, fmt.Errorf("devto request failed with status %d", resp.StatusCode)
	}

	var articles []DevtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return DevtoData{}, fmt.Errorf("decode devto response: %w", err)
	}

	totalReactions := 0
	for _, a := range articles {
		totalReactions += a.Reactions
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Reactions > articles[j].Reactions
	})
	top := articles
	if len(top) > devtoTopArticles {
		top = top[:devtoTopArticles]
	}

	return DevtoData{
		Articles:       top,
		TotalArticles:  len(articles),
		TotalReactions: totalReactions,
	}, nil
}
