package backend

import "net/http"

type errStatusNotOK int

func (e errStatusNotOK) Error() string {
	return "non-2xx HTTP status code: " + http.StatusText(int(e))
}

type errNotJSONShaped string

func (e errNotJSONShaped) Error() string {
	return "response body is not JSON-shaped: " + string(e)
}
