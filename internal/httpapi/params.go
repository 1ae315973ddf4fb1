package httpapi

import (
	"net/http"
	"strconv"
	"time"
)

// Query parameters are optional; an empty value counts as absent.

func queryInt(r *http.Request, name string) (*int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// epoch seconds
func queryTime(r *http.Request, name string) (*time.Time, bool) {
	n, ok := queryInt(r, name)
	if !ok || n == nil {
		return nil, ok
	}
	t := time.Unix(*n, 0).UTC()
	return &t, true
}

func queryBool(r *http.Request, name string) (*bool, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, false
	}
	return &b, true
}

func invalidParam(w http.ResponseWriter, name string) {
	badRequest(w, "Invalid query parameter: "+name)
}
