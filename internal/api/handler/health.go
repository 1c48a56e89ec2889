package handler

import "net/http"

// Health answers liveness probes. It reports nothing about downstream
// dependencies; a process that can serve it is considered alive.
func Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
