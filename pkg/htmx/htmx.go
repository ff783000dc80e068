// Package htmx contains the few HTMX response helpers the web layer needs.
package htmx

import (
	"encoding/json"
	"net/http"
)

const (
	HeaderRequest  = "HX-Request"
	HeaderBoosted  = "HX-Boosted"
	HeaderRedirect = "HX-Redirect"
	HeaderRefresh  = "HX-Refresh"
	HeaderTrigger  = "HX-Trigger"
)

// IsHTMX reports whether the request was sent by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderRequest) == "true"
}

// IsBoosted reports whether the request came from an hx-boost link or form.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get(HeaderBoosted) == "true"
}

// Redirect sends a 302 to regular clients and HX-Redirect with 200 to htmx,
// which performs the navigation client side.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) && !IsBoosted(r) {
		w.Header().Set(HeaderRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Trigger sets HX-Trigger with a single event and its detail payload.
func Trigger(w http.ResponseWriter, event string, detail any) error {
	data, err := json.Marshal(map[string]any{event: detail})
	if err != nil {
		return err
	}
	w.Header().Set(HeaderTrigger, string(data))
	return nil
}
