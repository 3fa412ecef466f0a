package showcase

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
)

// MediumData carries the latest articles from a Medium RSS feed. Medium's
// feed exposes no clap counts, so those fields stay zero.
type MediumData struct {
	Articles      []MediumArticle `json:"articles"`
	TotalArticles int             `json:"totalArticles"`
	TotalClaps    int             `json:"totalClaps"`
}

type MediumArticle struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	PublishedAt    string   `json:"publishedAt"`
	CoverImage     string   `json:"coverImage"`
	Tags           []string `json:"tags"`
	ReadingMinutes int      `json:"readingTime"`
	Claps          int      `json:"claps"`
	ResponseCount  int      `json:"responseCount"`
}

const mediumTopArticles = 4

type mediumFeed struct {
	Channel struct {
		Items []mediumItem `xml:"item"`
	} `xml:"channel"`
}

type mediumItem struct {
	GUID       string   `xml:"guid"`
	Title      string   `xml:"title"`
	Link       string   `xml:"link"`
	PubDate    string   `xml:"pubDate"`
	Categories []string `xml:"category"`
	Content    string   `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
}

var (
	mediumImageRe       = regexp.MustCompile(`<img[^>]+src="([^">]+)"`)
	mediumReadingTimeRe = regexp.MustCompile(`(\d+)\s+min\s+read`)
	mediumParagraphRe   = regexp.MustCompile(`<p>(.*?)</p>`)
	htmlTagRe           = regexp.MustCompile(`<[^>]*>`)
)

// Medium fetches and parses a user's RSS feed, through the cache.
func (s *Service) Medium(ctx context.Context, username string) (MediumData, error) {
	return cached(ctx, s, "showcase:medium:"+username, func() (MediumData, error) {
		return s.fetchMedium(ctx, username)
	})
}

func (s *Service) fetchMedium(ctx context.Context, username string) (MediumData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.mediumURL+username, nil)
	if err != nil {
		return MediumData{}, fmt.Errorf("build medium request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return MediumData{}, fmt.Errorf("medium request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MediumData{}, fmt.Errorf("medium feed request failed with status %d", resp.StatusCode)
	}

	var feed mediumFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return MediumData{}, fmt.Errorf("parse medium feed: %w", err)
	}

	items := feed.Channel.Items
	articles := make([]MediumArticle, 0, len(items))
	for _, item := range items {
		articles = append(articles, articleFromItem(item))
	}

	top := articles
	if len(top) > mediumTopArticles {
		top = top[:mediumTopArticles]
	}

	return MediumData{
		Articles:      top,
		TotalArticles: len(articles),
	}, nil
}

func articleFromItem(item mediumItem) MediumArticle {
	coverImage := ""
	if m := mediumImageRe.FindStringSubmatch(item.Content); m != nil {
		coverImage = m[1]
	}

	readingMinutes := 5
	if m := mediumReadingTimeRe.FindStringSubmatch(item.Content); m != nil {
		if parsed, err := strconv.Atoi(m[1]); err == nil {
			readingMinutes = parsed
		}
	}

	description := ""
	if m := mediumParagraphRe.FindStringSubmatch(item.Content); m != nil {
		description = htmlTagRe.ReplaceAllString(m[1], "")
	}

	id := item.GUID
	if id == "" {
		id = item.Link
	}

	return MediumArticle{
		ID:             id,
		Title:          item.Title,
		Description:    description,
		URL:            item.Link,
		PublishedAt:    item.PubDate,
		CoverImage:     coverImage,
		Tags:           item.Categories,
		ReadingMinutes: readingMinutes,
	}
}
