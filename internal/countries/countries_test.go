package countries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	)
}

const fixture = `[
 {"name":{"common":"United States"},"cca2":"US","idd":{"root":"+1","suffixes":["201","202"]},"postalCode":{"format":"#####-####","regex":"^\\d{5}(-\\d{4})?$"}},
 {"name":{"common":"Åland Islands"},"cca2":"AX","idd":{"root":"+3","suffixes":["5818"]},"postalCode":{"format":"#####","regex":"^(?:FI)*(\\d{5})$"}},
 {"name":{"common":"India"},"cca2":"IN","idd":{"root":"+9","suffixes":["1"]},"postalCode":{"format":"######","regex":"^(\\d{6})$"}},
 {"name":{"common":"Bahamas"},"cca2":"BS","idd":{"root":"+1","suffixes":["242"]}},
 {"name":{"common":"Antarctica"},"cca2":"AQ","idd":{}}
]`

type stub struct {
	hits   atomic.Int32
	fail   atomic.Bool
	gate   chan struct{}
	server *httptest.Server
}

func newStub(t *testing.T) *stub {
	t.Helper()
	s := &stub{}
	r := chi.NewRouter()
	r.Get("/v3.1/all", func(w http.ResponseWriter, req *http.Request) {
		s.hits.Add(1)
		if s.gate != nil {
			<-s.gate
		}
		if s.fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "name,idd,postalCode,cca2", req.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixture))
	})
	s.server = httptest.NewServer(r)
	t.Cleanup(s.server.Close)
	return s
}

func (s *stub) service(opts ...Option) *Service {
	httpClient := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	return NewService(clients.NewClient("countries", s.server.URL, httpClient), opts...)
}

func TestList_MapsAndSorts(t *testing.T) {
	svc := newStub(t).service()

	list := svc.List(context.Background())
	require.Len(t, list, 5)

	var names []string
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Åland Islands", "Antarctica", "Bahamas", "India", "United States"}, names)

	us := svc.Lookup(context.Background(), "us")
	assert.Equal(t, Country{
		Name:         "United States",
		CCA2:         "US",
		PhoneCode:    "+1201",
		PostalFormat: "#####-####",
		PostalRegex:  `^\d{5}(-\d{4})?$`,
	}, us)

	aq := svc.Lookup(context.Background(), "AQ")
	assert.Equal(t, "", aq.PhoneCode)
	assert.False(t, aq.Locale().Postal.Required())
}

func TestLookup_MissIsZeroCountry(t *testing.T) {
	svc := newStub(t).service()
	c := svc.Lookup(context.Background(), "ZZ")
	assert.Equal(t, Country{}, c)
	assert.NoError(t, c.Locale().Postal.Validate("anything"))
}

func TestList_FailureYieldsEmptyAndRetries(t *testing.T) {
	st := newStub(t)
	st.fail.Store(true)
	svc := st.service()

	list := svc.List(context.Background())
	assert.NotNil(t, list)
	assert.Empty(t, list)

	st.fail.Store(false)
	assert.Len(t, svc.List(context.Background()), 5)
	assert.EqualValues(t, 2, st.hits.Load())
}

func TestList_CachedForTTL(t *testing.T) {
	st := newStub(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := st.service(WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	svc.List(context.Background())
	svc.List(context.Background())
	assert.EqualValues(t, 1, st.hits.Load())

	now = now.Add(2 * time.Minute)
	svc.List(context.Background())
	assert.EqualValues(t, 2, st.hits.Load())
}

func TestList_ConcurrentLoadsCollapse(t *testing.T) {
	st := newStub(t)
	st.gate = make(chan struct{})
	svc := st.service()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, svc.List(context.Background()), 5)
		}()
	}

	require.Eventually(t, func() bool { return st.hits.Load() == 1 }, time.Second, 5*time.Millisecond)
	// let late callers join the in-flight load before it completes
	time.Sleep(20 * time.Millisecond)
	close(st.gate)
	wg.Wait()

	assert.EqualValues(t, 1, st.hits.Load())
}
