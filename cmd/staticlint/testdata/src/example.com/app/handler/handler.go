package handler

import "net/http"

func List(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "boom", http.StatusInternalServerError) // want `use errs.Write instead of http.Error`
}
