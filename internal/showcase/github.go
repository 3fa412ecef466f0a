package showcase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// GithubData mirrors what the profile's contribution chart renders.
type GithubData struct {
	TotalRepositories  int                `json:"totalRepositories"`
	PinnedRepositories []GithubRepository `json:"pinnedRepositories"`
	Contributions      GithubCalendar     `json:"contributions"`
}

type GithubRepository struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	URL             string          `json:"url"`
	StargazerCount  int             `json:"stargazerCount"`
	ForkCount       int             `json:"forkCount"`
	PrimaryLanguage *GithubLanguage `json:"primaryLanguage"`
}

type GithubLanguage struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type GithubCalendar struct {
	TotalContributions int          `json:"totalContributions"`
	Weeks              []GithubWeek `json:"weeks"`
}

type GithubWeek struct {
	ContributionDays []GithubDay `json:"contributionDays"`
}

type GithubDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
}

const githubQuery = `
query($userName: String!) {
  user(login: $userName) {
    repositories(privacy: PUBLIC) {
      totalCount
    }
    pinnedItems(first: 6, types: REPOSITORY) {
      nodes {
        ... on Repository {
          name
          description
          url
          stargazerCount
          forkCount
          primaryLanguage {
            name
            color
          }
        }
      }
    }
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
          }
        }
      }
    }
  }
}`

type githubResponse struct {
	Data struct {
		User *struct {
			Repositories struct {
				TotalCount int `json:"totalCount"`
			} `json:"repositories"`
			PinnedItems struct {
				Nodes []GithubRepository `json:"nodes"`
			} `json:"pinnedItems"`
			ContributionsCollection struct {
				ContributionCalendar GithubCalendar `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Github fetches the contribution calendar, pinned repos and repo count for
// a GitHub login, through the cache.
func (s *Service) Github(ctx context.Context, login string) (GithubData, error) {
	return cached(ctx, s, "showcase:github:"+login, func() (GithubData, error) {
		return s.fetchGithub(ctx, login)
	})
}

func (s *Service) fetchGithub(ctx context.Context, login string) (GithubData, error) {
	if s.githubToken == "" {
		return GithubData{}, errors.New("github access token is not configured")
	}

	body, err := json.Marshal(map[string]any{
		"query":     githubQuery,
		"variables": map[string]string{"userName": login},
	})
	if err != nil {
		return GithubData{}, fmt.Errorf("encode github query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.githubURL, bytes.NewReader(body))
	if err != nil {
		return GithubData{}, fmt.Errorf("build github request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.githubToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return GithubData{}, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GithubData{}, fmt.Errorf("github request failed with status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return GithubData{}, fmt.Errorf("read github response: %w", err)
	}

	var decoded githubResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return GithubData{}, fmt.Errorf("decode github response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return GithubData{}, fmt.Errorf("github graphql: %s", decoded.Errors[0].Message)
	}
	if decoded.Data.User == nil {
		return GithubData{}, errors.New("invalid github username or missing data")
	}

	user := decoded.Data.User
	return GithubData{
		TotalRepositories:  user.Repositories.TotalCount,
		PinnedRepositories: user.PinnedItems.Nodes,
		Contributions:      user.ContributionsCollection.ContributionCalendar,
	}, nil
}
