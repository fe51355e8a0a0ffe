package persona

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrNotFound     = errors.New("persona not found")
	ErrAmbiguous    = errors.New("persona query matched multiple records")
	ErrInvalidQuery = errors.New("exactly one of name or id must be set")
)

// Query selects a persona by name or by id, never both.
type Query struct {
	Name string
	ID   string
}

func (q Query) validate() error {
	if (q.Name == "") == (q.ID == "") {
		return ErrInvalidQuery
	}
	return nil
}

// Directory resolves personas from wherever they are stored.
type Directory interface {
	Find(ctx context.Context, q Query) (Persona, error)
}

// MemoryDirectory implements Directory with an in-memory slice, suitable for
// dev mode and tests. Match order follows insertion order.
type MemoryDirectory struct {
	items  []Persona
	strict bool
}

// NewMemoryDirectory returns a MemoryDirectory preloaded with the supplied
// personas. When strict is true, queries matching more than one record fail
// with ErrAmbiguous instead of taking the first match.
func NewMemoryDirectory(items []Persona, strict bool) *MemoryDirectory {
	return &MemoryDirectory{items: append([]Persona(nil), items...), strict: strict}
}

// Find looks up a persona by the query criteria.
func (d *MemoryDirectory) Find(_ context.Context, q Query) (Persona, error) {
	if err := q.validate(); err != nil {
		return Persona{}, err
	}

	var matches []Persona
	for _, item := range d.items {
		if (q.ID != "" && item.ID == q.ID) || (q.Name != "" && item.Name == q.Name) {
			matches = append(matches, item)
		}
	}

	return pickMatch(matches, q, d.strict)
}

// HTTPDirectory queries an external persona directory service.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
	strict  bool
}

// NewHTTPDirectory builds a directory client for the given base URL.
func NewHTTPDirectory(baseURL string, timeout time.Duration, strict bool) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		strict:  strict,
	}
}

// Find forwards the query verbatim to the directory service and applies the
// same match policy as MemoryDirectory to the returned list.
func (d *HTTPDirectory) Find(ctx context.Context, q Query) (Persona, error) {
	if err := q.validate(); err != nil {
		return Persona{}, err
	}

	params := url.Values{}
	if q.Name != "" {
		params.Set("name", q.Name)
	} else {
		params.Set("id", q.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/personas?"+params.Encode(), nil)
	if err != nil {
		return Persona{}, fmt.Errorf("build persona request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Persona{}, fmt.Errorf("query persona directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Persona{}, fmt.Errorf("persona directory returned status %d", resp.StatusCode)
	}

	var matches []Persona
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return Persona{}, fmt.Errorf("decode persona directory response: %w", err)
	}

	return pickMatch(matches, q, d.strict)
}

func pickMatch(matches []Persona, q Query, strict bool) (Persona, error) {
	switch {
	case len(matches) == 0:
		return Persona{}, fmt.Errorf("%w: name=%q id=%q", ErrNotFound, q.Name, q.ID)
	case len(matches) > 1 && strict:
		return Persona{}, fmt.Errorf("%w: name=%q id=%q matched %d", ErrAmbiguous, q.Name, q.ID, len(matches))
	default:
		return matches[0], nil
	}
}
