package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/contribs/internal/cache"
	"github.com/spiffcs/contribs/internal/constants"
	"github.com/spiffcs/contribs/internal/log"
	"github.com/spiffcs/contribs/internal/model"
	"golang.org/x/oauth2"
)

// ErrInvalidRepo is returned for repository names not of the form owner/name.
var ErrInvalidRepo = errors.New("invalid repository")

// GitHubClient wraps the GitHub API client shared by every repository source.
type GitHubClient struct {
	client *gh.Client
	limits *RateLimitState
}

// ClientOption configures NewGitHubClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	baseURL string
}

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise server.
func WithBaseURL(u string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// NewGitHubClient creates a client authenticated with token. An empty
// token falls back to unauthenticated access, which GitHub limits to 60
// requests an hour.
func NewGitHubClient(ctx context.Context, token string, opts ...ClientOption) (*GitHubClient, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	var tc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
	} else {
		log.Warn("GITHUB_TOKEN not set, using unauthenticated GitHub access")
		tc = &http.Client{Transport: http.DefaultTransport}
	}

	limits := &RateLimitState{}
	// Wrap transport with rate limit handling
	tc.Transport = &rateLimitTransport{
		base:  tc.Transport,
		state: limits,
	}

	client := gh.NewClient(tc)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", o.baseURL, err)
		}
		client.BaseURL = u
	}

	return &GitHubClient{
		client: client,
		limits: limits,
	}, nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *GitHubClient) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// RateLimitStatus returns the limit last observed on a response.
func (c *GitHubClient) RateLimitStatus() (remaining, limit int, resetAt time.Time, limited bool) {
	return c.limits.Status()
}

// ParseRepo splits "owner/name" into its parts.
func ParseRepo(fullName string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q (want owner/name)", ErrInvalidRepo, fullName)
	}
	return parts[0], parts[1], nil
}

// GitHubSource lists the contributors of one repository, anonymous
// (unregistered) contributors included, in the order GitHub returns them.
type GitHubSource struct {
	client  *GitHubClient
	owner   string
	repo    string
	cache   cache.Cacher
	exclude func(login string) bool
}

// RepoOption configures a GitHubSource.
type RepoOption func(*GitHubSource)

// WithCache serves and stores contributor lists through c.
func WithCache(c cache.Cacher) RepoOption {
	return func(s *GitHubSource) {
		s.cache = c
	}
}

// WithExclude drops registered contributors whose login matches.
func WithExclude(exclude func(login string) bool) RepoOption {
	return func(s *GitHubSource) {
		s.exclude = exclude
	}
}

// Repo returns a source for the repository fullName ("owner/name").
func (c *GitHubClient) Repo(fullName string, opts ...RepoOption) (*GitHubSource, error) {
	owner, repo, err := ParseRepo(fullName)
	if err != nil {
		return nil, err
	}

	s := &GitHubSource{
		client: c,
		owner:  owner,
		repo:   repo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns "owner/name"
func (s *GitHubSource) Name() string {
	return s.owner + "/" + s.repo
}

// Contributors fetches every page of the repository's contributor list.
func (s *GitHubSource) Contributors(ctx context.Context) ([]model.Contributor, error) {
	name := s.Name()

	if s.cache != nil {
		if cached, ok := s.cache.Get(name); ok {
			log.Debug("contributor cache hit", "repo", name, "count", len(cached))
			return s.filter(cached), nil
		}
	}

	opts := &gh.ListContributorsOptions{
		Anon:        "true",
		ListOptions: gh.ListOptions{PerPage: constants.ContributorsPerPage},
	}

	var all []model.Contributor
	for {
		page, resp, err := s.client.client.Repositories.ListContributors(ctx, s.owner, s.repo, opts)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				_, _, resetAt, _ := s.client.RateLimitStatus()
				return nil, fmt.Errorf("%s: %w (resets at %s)", name, ErrRateLimited, resetAt.Format(time.Kitchen))
			}
			return nil, fmt.Errorf("failed to list contributors for %s: %w", name, err)
		}

		for _, c := range page {
			all = append(all, fromGitHub(c))
		}
		log.Debug("fetched contributor page", "repo", name, "page", opts.Page, "count", len(page))

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if s.cache != nil {
		if err := s.cache.Set(name, all); err != nil {
			log.Debug("failed to cache contributors", "repo", name, "error", err)
		}
	}

	return s.filter(all), nil
}

func (s *GitHubSource) filter(in []model.Contributor) []model.Contributor {
	if s.exclude == nil {
		return in
	}
	out := make([]model.Contributor, 0, len(in))
	for _, c := range in {
		if c.Name != "" && s.exclude(c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// fromGitHub converts one API record. Registered accounts are labelled by
// login; anonymous commit authors carry only the name and email from git.
func fromGitHub(c *gh.Contributor) model.Contributor {
	if c.GetType() == "Anonymous" || c.GetLogin() == "" {
		name := strings.TrimSpace(c.GetName())
		email := strings.ToLower(strings.TrimSpace(c.GetEmail()))
		if name == "" {
			name = email
		}
		key := email
		if key == "" {
			key = name
		}
		return model.Contributor{
			ID:               "anon:" + key,
			UnregisteredName: name,
		}
	}

	return model.Contributor{
		ID:     strconv.FormatInt(c.GetID(), 10),
		Name:   c.GetLogin(),
		Active: c.GetType() == "User",
	}
}
