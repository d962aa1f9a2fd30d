package adzuna

import (
	"time"

	"github.com/honeycarbs/jobscout/pkg/fetch"
)

// Config defines Adzuna API client settings
type Config struct {
	AppID    string
	AppKey   string
	Country  string
	BaseURL  string
	PageSize int
}

// Client queries Adzuna job search API
type Client struct {
	appID    string
	appKey   string
	country  string
	baseURL  string
	pageSize int
	fetcher  *fetch.Client
}

// SearchParams describe a job search request
type SearchParams struct {
	Location string
	Page     int // 1-based
}

// SearchPage is one page of search results
type SearchPage struct {
	Jobs  []Job
	Count int // total matches reported by Adzuna
}

type jobSearchResponse struct {
	Count   int          `json:"count"`
	Results []jobPosting `json:"results"`
}

type jobPosting struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Company      companySummary  `json:"company"`
	Location     locationSummary `json:"location"`
	Description  string          `json:"description"`
	Created      string          `json:"created"`
	RedirectURL  string          `json:"redirect_url"`
	ContractTime string          `json:"contract_time"`
	ContractType string          `json:"contract_type"`
	Category     struct {
		Label string `json:"label"`
	} `json:"category"`
	SalaryMin float64 `json:"salary_min"`
	SalaryMax float64 `json:"salary_max"`
}

type companySummary struct {
	DisplayName string `json:"display_name"`
}

type locationSummary struct {
	DisplayName string `json:"display_name"`
}

// Job is an Adzuna posting
type Job struct {
	ID           string
	Title        string
	CompanyName  string
	Location     string
	URL          string
	Description  string
	ContractTime string // full_time, part_time
	ContractType string // permanent, contract
	Category     string
	PostedAt     time.Time
	SalaryMin    float64
	SalaryMax    float64
}
