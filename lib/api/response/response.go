package response

import "qrlink/lib/clock"

type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Success       bool        `json:"success" validate:"required"`
	StatusMessage string      `json:"status_message"`
	Timestamp     string      `json:"timestamp"`
}

func Ok(data interface{}) Response {
	return Response{
		Data:          data,
		Success:       true,
		StatusMessage: "Success",
		Timestamp:     clock.Timestamp(),
	}
}

// Error response carrying a short machine-readable code, e.g. NOT_FOUND
func Error(code string) Response {
	return Response{
		Success:       false,
		StatusMessage: code,
		Timestamp:     clock.Timestamp(),
	}
}
