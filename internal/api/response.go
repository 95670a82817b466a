package api

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
)

// Response is the capability contract shared by live and cached fetch
// results, so downstream code never cares where a body came from.
type Response interface {
	Status() int
	Body() []byte
}

// NetworkResponse is a live answer from the upstream API.
type NetworkResponse struct {
	StatusCode int
	Payload    []byte
}

func (r *NetworkResponse) Status() int {
	return r.StatusCode
}

func (r *NetworkResponse) Body() []byte {
	return r.Payload
}

// CachedResponse replays a stored body. Always reports HTTP 200 because
// only successful responses are ever written to the cache.
type CachedResponse struct {
	Payload []byte
}

func (r *CachedResponse) Status() int {
	return fasthttp.StatusOK
}

func (r *CachedResponse) Body() []byte {
	return r.Payload
}

func decodeJSON(r Response, v any) error {
	return json.Unmarshal(r.Body(), v)
}
