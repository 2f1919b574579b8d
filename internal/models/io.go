// Package models provides the transport-neutral request and response shapes shared by the service and lambda runtimes.
package models

// Request represents an incoming client request reduced to what the routes need.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
}

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
// Base64 marks a Body holding base64-encoded binary content.
type Response struct {
	Body       string
	Headers    map[string]string
	StatusCode int
	Base64     bool
}
