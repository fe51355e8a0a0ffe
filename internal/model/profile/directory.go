package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrNotFound = errors.New("profile not found")

// Directory resolves profiles from wherever they are stored.
type Directory interface {
	Get(ctx context.Context, id string) (Profile, error)
}

// MemoryDirectory implements Directory with an in-memory map for dev mode
// and tests.
type MemoryDirectory struct {
	items map[string]Profile
}

// NewMemoryDirectory returns a MemoryDirectory preloaded with the supplied
// profiles.
func NewMemoryDirectory(items []Profile) *MemoryDirectory {
	m := make(map[string]Profile, len(items))
	for _, item := range items {
		m[item.ID] = item
	}
	return &MemoryDirectory{items: m}
}

// Get retrieves a profile by identifier.
func (d *MemoryDirectory) Get(_ context.Context, id string) (Profile, error) {
	p, ok := d.items[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: id=%q", ErrNotFound, id)
	}
	return p, nil
}

// HTTPDirectory queries an external profile service.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory builds a profile client for the given base URL.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Get fetches a profile by id; a 404 from the service maps to ErrNotFound.
func (d *HTTPDirectory) Get(ctx context.Context, id string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/profiles/"+id, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build profile request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("query profile directory: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Profile{}, fmt.Errorf("%w: id=%q", ErrNotFound, id)
	default:
		return Profile{}, fmt.Errorf("profile directory returned status %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile response: %w", err)
	}
	return p, nil
}
