package httpapi

import (
	"net/http"
	"sync"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

type HealthHandler struct {
	Probes []clients.HealthProbe
}

func (h *HealthHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}

func (h *HealthHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	results := make([]clients.HealthResult, len(h.Probes))

	var wg sync.WaitGroup
	for i := range h.Probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = clients.CheckHealth(r.Context(), h.Probes[i])
		}()
	}
	wg.Wait()

	status := "ok"
	for _, res := range results {
		if !res.OK {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"service":  "storefront",
		"upstream": results,
	})
}
