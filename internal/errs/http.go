package errs

import (
	"encoding/json"
	"net/http"
)

// Response is the body of every failed request.
type Response struct {
	Err *Error `json:"err"`
}

// Write renders err as {"err": {...}} with the status of its kind.
func Write(w http.ResponseWriter, err error) {
	e := From(err)

	body, mErr := json.Marshal(Response{Err: e})
	if mErr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_, _ = w.Write(body)
}
