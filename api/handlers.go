package main

import (
	"encoding/json"
	"log"
	"net/http"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	healthCheck := struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Version     string `json:"version"`
	}{
		Status:      "available",
		Environment: app.config.env,
		Version:     version,
	}
	writeJSON(w, http.StatusOK, healthCheck)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

// writeMessage is the error shape of the whole API: a status code and a
// human-readable message, nothing else.
func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Del("Content-Length")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	writeJSON(w, statusCode, map[string]string{"message": message})
}

func (app *application) serverError(w http.ResponseWriter, err error) {
	log.Println(err)
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}
