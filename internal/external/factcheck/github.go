package factcheck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// GitHubLookup answers fact-check lookups by searching a curated
// GitHub repository of community fact-check entries (issues labelled
// with a verdict) for the claim text, caching results for cacheTTL so
// repeated claims across reports in a case don't re-hit the API.
// Grounded on the donor's internal/github/client.go (rate-limited
// client) and internal/cache/manager.go (memory-cache-first read
// path), repointed from commit/PR metadata to issue search.
type GitHubLookup struct {
	client      *github.Client
	owner, repo string
	limiter     *rate.Limiter
	cache       *gocache.Cache
	logger      *logging.Logger
}

// NewGitHubLookup builds a lookup against owner/repo's issue tracker,
// authenticated with token (may be empty for unauthenticated access at
// GitHub's lower rate limit).
func NewGitHubLookup(token, owner, repo string, cacheTTL time.Duration) *GitHubLookup {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &GitHubLookup{
		client:  client,
		owner:   owner,
		repo:    repo,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		logger:  logging.With("component", "factcheck.github"),
	}
}

func (g *GitHubLookup) Lookup(ctx context.Context, claimText string) []Rating {
	cacheKey := strings.ToLower(strings.TrimSpace(claimText))
	if cached, found := g.cache.Get(cacheKey); found {
		if ratings, ok := cached.([]Rating); ok {
			return ratings
		}
	}

	ratings := g.search(ctx, claimText)
	g.cache.Set(cacheKey, ratings, gocache.DefaultExpiration)
	return ratings
}

func (g *GitHubLookup) search(ctx context.Context, claimText string) []Rating {
	if err := g.limiter.Wait(ctx); err != nil {
		g.logger.Warn("factcheck rate limiter wait failed", "error", err)
		return nil
	}

	query := fmt.Sprintf("%s repo:%s/%s in:title,body", claimText, g.owner, g.repo)
	result, _, err := g.client.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 5},
	})
	if err != nil {
		g.logger.Warn("factcheck search failed", "error", err)
		return nil
	}

	ratings := make([]Rating, 0, len(result.Issues))
	for _, issue := range result.Issues {
		ratings = append(ratings, Rating{
			Claimant: claimText,
			Rating:   ratingFromLabels(issue.Labels),
			URL:      issue.GetHTMLURL(),
			Reviewer: issue.GetUser().GetLogin(),
		})
	}
	return ratings
}

func ratingFromLabels(labels []*github.Label) string {
	for _, l := range labels {
		name := strings.ToLower(l.GetName())
		switch name {
		case "false", "misleading", "true", "unverified", "mixed":
			return name
		}
	}
	return "unverified"
}
