// Package fakeapi serves in-memory stand-ins for the dog.ceo and Yandex Disk
// HTTP APIs so clients and the upload pipeline can be exercised with
// httptest instead of the network.
package fakeapi

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

// DogAPI is a fake of the dog.ceo breed API.
type DogAPI struct {
	// ImageHost prefixes generated image URLs.
	ImageHost string

	mu       sync.Mutex
	breeds   map[string][]string
	counter  int
	requests []string
}

// NewDogAPI creates a DogAPI knowing the given breeds and their sub-breeds.
func NewDogAPI(breeds map[string][]string) *DogAPI {
	return &DogAPI{
		ImageHost: "https://images.dog.ceo",
		breeds:    breeds,
	}
}

// Handler returns the routed API.
func (d *DogAPI) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/breed/{breed}/list", d.listSubBreeds).Methods(http.MethodGet)
	r.HandleFunc("/breed/{breed}/images/random", d.randomImage).Methods(http.MethodGet)
	r.HandleFunc("/breed/{breed}/{sub}/images/random", d.randomImage).Methods(http.MethodGet)
	return r
}

// Requests returns the request paths served so far, in order.
func (d *DogAPI) Requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.requests...)
}

func (d *DogAPI) listSubBreeds(w http.ResponseWriter, r *http.Request) {
	d.record(r)
	breed := mux.Vars(r)["breed"]

	subs, ok := d.lookup(breed)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  "error",
			"message": "Breed not found (main breed does not exist)",
			"code":    http.StatusNotFound,
		})
		return
	}
	if subs == nil {
		subs = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": subs, "status": "success"})
}

func (d *DogAPI) randomImage(w http.ResponseWriter, r *http.Request) {
	d.record(r)
	vars := mux.Vars(r)
	breed, sub := vars["breed"], vars["sub"]

	subs, ok := d.lookup(breed)
	if ok && sub != "" {
		ok = contains(subs, sub)
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  "error",
			"message": "Breed not found (sub breed does not exist)",
			"code":    http.StatusNotFound,
		})
		return
	}

	dir := breed
	if sub != "" {
		dir = breed + "-" + sub
	}

	d.mu.Lock()
	d.counter++
	n := d.counter
	d.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("%s/breeds/%s/n%08d_%d.jpg", d.ImageHost, dir, 2100000+n, n),
		"status":  "success",
	})
}

func (d *DogAPI) lookup(breed string) ([]string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	subs, ok := d.breeds[breed]
	return subs, ok
}

func (d *DogAPI) record(r *http.Request) {
	d.mu.Lock()
	d.requests = append(d.requests, r.URL.Path)
	d.mu.Unlock()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
