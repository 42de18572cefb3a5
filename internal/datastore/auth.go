package datastore

import (
	"net/http"

	"github.com/HazeMiya/ai-2024/internal/httpclient"
)

// authDoer adds a bearer token to every request.
type authDoer struct {
	next  httpclient.HTTPDoer
	token string
}

func (a authDoer) Do(req *http.Request) (*http.Response, error) {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	return a.next.Do(req)
}
