package api

import "time"

// Response statuses used in the JSON envelope
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope of every successful JSON response
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success wraps data in a success envelope
func Success(data interface{}) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// HealthResponse reports service liveness and the loaded table
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Rows      int       `json:"rows"`
	Source    string    `json:"source"`
	LoadedAt  time.Time `json:"loaded_at"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}
