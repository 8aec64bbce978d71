// Package countries loads the country list used to drive postal and phone
// validation. A failed load degrades to an empty list, never an error, so
// forms stay usable without country metadata.
package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

const (
	listPath  = "/v3.1/all"
	listQuery = "fields=name,idd,postalCode,cca2"
)

type Country struct {
	Name         string `json:"name"`
	CCA2         string `json:"cca2"`
	PhoneCode    string `json:"phoneCode"`
	PostalFormat string `json:"postalFormat"`
	PostalRegex  string `json:"postalRegex"`
}

// Locale is the validation view of c. The zero Country yields a Locale with
// no constraints.
func (c Country) Locale() validation.Locale {
	return validation.Locale{
		Region: c.CCA2,
		Postal: validation.PostalRule{Template: c.PostalFormat, Regex: c.PostalRegex},
	}
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func WithTTL(ttl time.Duration) Option { return func(s *Service) { s.ttl = ttl } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

type Service struct {
	client *clients.Client
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	cached    []Country
	fetchedAt time.Time

	sfg singleflight.Group
}

func NewService(client *clients.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		logger: zap.NewNop(),
		ttl:    time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every country sorted by name. Failures are logged and yield an
// empty list; they are not cached, so the next call tries again.
func (s *Service) List(ctx context.Context) []Country {
	if list, ok := s.fresh(); ok {
		return list
	}

	v, err, _ := s.sfg.Do("all", func() (interface{}, error) {
		if list, ok := s.fresh(); ok {
			return list, nil
		}
		// shared by every waiter, so one caller going away must not cancel it
		list, err := s.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = list
		s.fetchedAt = s.now()
		s.mu.Unlock()
		return list, nil
	})
	if err != nil {
		s.logger.Warn("failed to load countries list", zap.Error(err))
		return []Country{}
	}
	return append([]Country(nil), v.([]Country)...)
}

// Lookup finds a country by its ISO alpha-2 code. A miss returns the zero
// Country.
func (s *Service) Lookup(ctx context.Context, cca2 string) Country {
	for _, c := range s.List(ctx) {
		if strings.EqualFold(c.CCA2, cca2) {
			return c
		}
	}
	return Country{}
}

func (s *Service) fresh() ([]Country, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil || s.now().Sub(s.fetchedAt) >= s.ttl {
		return nil, false
	}
	return append([]Country(nil), s.cached...), true
}

type wireCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA2 string `json:"cca2"`
	IDD  struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
	PostalCode struct {
		Format string `json:"format"`
		Regex  string `json:"regex"`
	} `json:"postalCode"`
}

func (s *Service) fetch(ctx context.Context) ([]Country, error) {
	resp, err := s.client.Do(ctx, http.MethodGet, listPath, listQuery, nil, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch countries: unexpected status %d", resp.StatusCode)
	}

	var wire []wireCountry
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	list := make([]Country, 0, len(wire))
	for _, w := range wire {
		phone := w.IDD.Root
		if len(w.IDD.Suffixes) > 0 {
			phone += w.IDD.Suffixes[0]
		}
		list = append(list, Country{
			Name:         w.Name.Common,
			CCA2:         w.CCA2,
			PhoneCode:    phone,
			PostalFormat: w.PostalCode.Format,
			PostalRegex:  w.PostalCode.Regex,
		})
	}

	col := collate.New(language.English, collate.Loose)
	sort.SliceStable(list, func(i, j int) bool {
		return col.CompareString(list[i].Name, list[j].Name) < 0
	})

	s.logger.Debug("loaded countries", zap.Int("count", len(list)))
	return list, nil
}
