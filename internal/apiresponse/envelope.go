// Package apiresponse defines the JSON envelope every /api/v1 endpoint answers with.
package apiresponse

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func OK(data any, message string) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

func Fail(message string, data any) Envelope {
	return Envelope{Success: false, Message: message, Data: data}
}
