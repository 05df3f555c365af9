package remote

import "net/http"

// HTTPResult is the outcome of a single GET: either a body with its response
// or a transport error.
type HTTPResult struct {
	body     []byte
	response *http.Response
	err      error
}

func HTTPResultSuccess(body []byte, response *http.Response) HTTPResult {
	return HTTPResult{body: body, response: response}
}

func HTTPResultFailure(err error) HTTPResult {
	return HTTPResult{err: err}
}

func (r HTTPResult) Err() error {
	return r.err
}

func (r HTTPResult) Success() ([]byte, *http.Response, bool) {
	return r.body, r.response, r.err == nil
}

// HTTPClient performs one-shot GET requests. Each call's completion must be
// invoked exactly once with that call's own result; overlapping calls share
// no state.
type HTTPClient interface {
	Get(url string, completion func(HTTPResult))
}
