package adzuna

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/honeycarbs/jobscout/pkg/fetch"
)

const (
	defaultBaseURL  = "https://api.adzuna.com"
	defaultCountry  = "us"
	defaultPageSize = 20
	maxPageSize     = 50
)

// NewClient instantiates an Adzuna API client on top of a paced fetcher
func NewClient(cfg Config, fetcher *fetch.Client) (*Client, error) {
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("adzuna: app_id and app_key are required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("adzuna: fetch client is required")
	}

	country := strings.ToLower(cfg.Country)
	if country == "" {
		country = defaultCountry
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return &Client{
		appID:    cfg.AppID,
		appKey:   cfg.AppKey,
		country:  country,
		baseURL:  baseURL,
		pageSize: pageSize,
		fetcher:  fetcher,
	}, nil
}

// PageSize is the number of results requested per page
func (c *Client) PageSize() int {
	return c.pageSize
}

// SearchJobs fetches one page of results for query
func (c *Client) SearchJobs(ctx context.Context, query string, params SearchParams) (SearchPage, error) {
	if c == nil {
		return SearchPage{}, fmt.Errorf("adzuna: client is nil")
	}

	u, err := c.buildSearchURL(query, params)
	if err != nil {
		return SearchPage{}, err
	}

	var payload jobSearchResponse
	if err := c.fetcher.GetJSON(ctx, u, nil, &payload); err != nil {
		return SearchPage{}, fmt.Errorf("adzuna: %w", err)
	}

	jobs := make([]Job, 0, len(payload.Results))
	for _, posting := range payload.Results {
		jobs = append(jobs, mapPosting(posting))
	}

	return SearchPage{Jobs: jobs, Count: payload.Count}, nil
}

func (c *Client) buildSearchURL(query string, params SearchParams) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("adzuna: parse base url: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	u.Path = path.Join(u.Path, "v1", "api", "jobs", c.country, "search", strconv.Itoa(page))

	values := url.Values{}
	values.Set("app_id", c.appID)
	values.Set("app_key", c.appKey)
	values.Set("results_per_page", strconv.Itoa(c.pageSize))
	values.Set("content-type", "application/json")
	if q := strings.TrimSpace(query); q != "" {
		values.Set("what", q)
	}
	if where := strings.TrimSpace(params.Location); where != "" {
		values.Set("where", where)
	}

	u.RawQuery = values.Encode()
	return u.String(), nil
}

func mapPosting(posting jobPosting) Job {
	job := Job{
		ID:           posting.ID,
		Title:        posting.Title,
		CompanyName:  posting.Company.DisplayName,
		Location:     posting.Location.DisplayName,
		URL:          posting.RedirectURL,
		Description:  posting.Description,
		ContractTime: posting.ContractTime,
		ContractType: posting.ContractType,
		Category:     posting.Category.Label,
		SalaryMin:    posting.SalaryMin,
		SalaryMax:    posting.SalaryMax,
	}

	if posting.Created != "" {
		if ts, err := time.Parse(time.RFC3339, posting.Created); err == nil {
			job.PostedAt = ts
		}
	}

	return job
}
