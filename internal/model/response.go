package model

// Response is the JSON envelope for widget data and API errors.
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
	Message string      `json:"message"`
}

// ErrorResponse wraps errMsg in the envelope with a short message.
func ErrorResponse(errMsg, message string) Response {
	return Response{Error: &errMsg, Message: message}
}
