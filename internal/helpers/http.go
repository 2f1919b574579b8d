package helpers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/isometry/traffic-dash/internal/models"
)

const (
	// ContentTypeJSON is the media type of relayed payloads and error envelopes.
	ContentTypeJSON = "application/json"
)

type httpResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Envelope encodes a message and an optional error as the JSON body used for non-relayed responses.
func Envelope(message string, err error) []byte {
	hR := httpResponse{
		Message: message,
	}
	if err != nil {
		hR.Error = err.Error()
	}
	body, _ := json.Marshal(hR)
	return body
}

// ErrorResponse builds an enveloped response carrying the given status code.
func ErrorResponse(statusCode int, message string, err error) models.Response {
	return models.Response{
		Body:       string(Envelope(message, err)),
		Headers:    map[string]string{"Content-Type": ContentTypeJSON},
		StatusCode: statusCode,
	}
}

// RespondHTTP writes response.Body and err as a JSON envelope.
func RespondHTTP(response models.Response, err error, rw http.ResponseWriter) {
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	rw.Header().Set("Content-Type", ContentTypeJSON)
	rw.WriteHeader(statusCode)
	_, _ = rw.Write(Envelope(response.Body, err))
}

// WriteHTTP writes response verbatim: headers, status code and body.
// A Base64 body is decoded before being written.
func WriteHTTP(response models.Response, rw http.ResponseWriter) {
	body := []byte(response.Body)
	if response.Base64 {
		if decoded, err := base64.StdEncoding.DecodeString(response.Body); err == nil {
			body = decoded
		}
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	rw.WriteHeader(statusCode)
	_, _ = rw.Write(body)
}
