package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FilterMode selects which files of the pull request the service analyzes.
type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterChanged  FilterMode = "changed"
	FilterRelevant FilterMode = "relevant"
)

func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterChanged:
		return FilterChanged, nil
	case FilterRelevant:
		return FilterRelevant, nil
	default:
		return "", fmt.Errorf("unsupported filter mode: %s (supported: all, changed, relevant)", s)
	}
}

// AnalysisRequest is the payload posted to the analysis service.
type AnalysisRequest struct {
	Repo       string     `json:"repo"`
	PR         string     `json:"pr"`
	Token      string     `json:"token"`
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	APIKey     string     `json:"api_key"`
	FilterMode FilterMode `json:"filter_mode"`
	BRDText    string     `json:"brd_txt"`
}

// Validate reports every problem at once so the user can fix the form in one go.
// Provider names are checked by the caller against the provider catalogue.
func (r AnalysisRequest) Validate() error {
	var errs []error

	owner, name, ok := strings.Cut(strings.TrimSpace(r.Repo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		errs = append(errs, fmt.Errorf("repo must look like owner/repository, got %q", r.Repo))
	}
	if n, err := strconv.Atoi(strings.TrimSpace(r.PR)); err != nil || n <= 0 {
		errs = append(errs, fmt.Errorf("pr must be a positive pull request number, got %q", r.PR))
	}
	if strings.TrimSpace(r.Token) == "" {
		errs = append(errs, errors.New("token is required"))
	}
	if strings.TrimSpace(r.Provider) == "" {
		errs = append(errs, errors.New("provider is required"))
	}
	if strings.TrimSpace(r.Model) == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if strings.TrimSpace(r.APIKey) == "" {
		errs = append(errs, errors.New("api_key is required"))
	}
	if _, err := ParseFilterMode(string(r.FilterMode)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
