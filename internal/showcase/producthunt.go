package showcase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ProductHuntData summarizes a maker's launches for the showcase section.
type ProductHuntData struct {
	Launches      []ProductLaunch `json:"launches"`
	TotalUpvotes  int             `json:"totalUpvotes"`
	TotalLaunches int             `json:"totalLaunches"`
}

type ProductLaunch struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Tagline       string `json:"tagline"`
	URL           string `json:"url"`
	Thumbnail     string `json:"thumbnail"`
	VotesCount    int    `json:"votesCount"`
	CommentsCount int    `json:"commentsCount"`
	LaunchedAt    string `json:"launchedAt"`
}

const productHuntQuery = `
query($username: String!) {
  user(username: $username) {
    madePosts(first: 10) {
      edges {
        node {
          id
          name
          tagline
          url
          thumbnail {
            url
          }
          votesCount
          commentsCount
          createdAt
        }
      }
    }
  }
}`

type productHuntResponse struct {
	Data struct {
		User *struct {
			MadePosts struct {
				Edges []struct {
					Node struct {
						ID        string `json:"id"`
						Name      string `json:"name"`
						Tagline   string `json:"tagline"`
						URL       string `json:"url"`
						Thumbnail *struct {
							URL string `json:"url"`
						} `json:"thumbnail"`
						VotesCount    int    `json:"votesCount"`
						CommentsCount int    `json:"commentsCount"`
						CreatedAt     string `json:"createdAt"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"madePosts"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ProductHunt fetches a maker's launches sorted by votes, through the cache.
func (s *Service) ProductHunt(ctx context.Context, username string) (ProductHuntData, error) {
	username = strings.TrimPrefix(username, "@")
	return cached(ctx, s, "showcase:producthunt:"+username, func() (ProductHuntData, error) {
		return s.fetchProductHunt(ctx, username)
	})
}

func (s *Service) fetchProductHunt(ctx context.Context, username string) (ProductHuntData, error) {
	if s.productHuntToken == "" {
		return ProductHuntData{}, errors.New("product hunt access token is not configured")
	}

	body, err := json.Marshal(map[string]any{
		"query":     productHuntQuery,
		"variables": map[string]string{"username": username},
	})
	if err != nil {
		return ProductHuntData{}, fmt.Errorf("encode product hunt query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.productHuntURL, bytes.NewReader(body))
	if err != nil {
		return ProductHuntData{}, fmt.Errorf("build product hunt request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.productHuntToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ProductHuntData{}, fmt.Errorf("product hunt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ProductHuntData{}, fmt.Errorf("product hunt request failed with status %d", resp.StatusCode)
	}

	var decoded productHuntResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ProductHuntData{}, fmt.Errorf("decode product hunt response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return ProductHuntData{}, fmt.Errorf("product hunt graphql: %s", decoded.Errors[0].Message)
	}
	if decoded.Data.User == nil {
		return ProductHuntData{}, errors.New("invalid product hunt username or missing data")
	}

	edges := decoded.Data.User.MadePosts.Edges
	launches := make([]ProductLaunch, 0, len(edges))
	totalUpvotes := 0
	for _, edge := range edges {
		launch := ProductLaunch{
			ID:            edge.Node.ID,
			Name:          edge.Node.Name,
			Tagline:       edge.Node.Tagline,
			URL:           edge.Node.URL,
			VotesCount:    edge.Node.VotesCount,
			CommentsCount: edge.Node.CommentsCount,
			LaunchedAt:    edge.Node.CreatedAt,
		}
		if edge.Node.Thumbnail != nil {
			launch.Thumbnail = edge.Node.Thumbnail.URL
		}
		launches = append(launches, launch)
		totalUpvotes += launch.VotesCount
	}
	sort.SliceStable(launches, func(i, j int) bool {
		return launches[i].VotesCount > launches[j].VotesCount
	})

	return ProductHuntData{
		Launches:      launches,
		TotalUpvotes:  totalUpvotes,
		TotalLaunches: len(launches),
	}, nil
}
