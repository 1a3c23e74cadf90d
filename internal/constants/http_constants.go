// Package constants contains shared HTTP header names and
// common content type strings used across the service.
package constants

// Header names commonly used across the application.
const (
	// HeaderContentType is the HTTP "Content-Type" header name.
	HeaderContentType = "Content-Type"

	// HeaderContentDisposition is the HTTP "Content-Disposition" header name.
	HeaderContentDisposition = "Content-Disposition"

	// HeaderReferer is the HTTP "Referer" header name.
	HeaderReferer = "Referer"

	// HeaderXRequestID is the custom request ID header name.
	HeaderXRequestID = "X-Request-ID"

	// HeaderXClientToken is the optional caller-supplied token mixed into
	// the rate-limit client key. The value is never verified.
	HeaderXClientToken = "X-Client-Token"
)

// Common media / content types used in requests and responses.
const (
	// ContentTypeJSON represents "application/json".
	ContentTypeJSON = "application/json"

	// ContentTypeMarkdown represents "text/markdown; charset=utf-8".
	ContentTypeMarkdown = "text/markdown; charset=utf-8"

	// ContentTypeMultipartForm represents "multipart/form-data".
	ContentTypeMultipartForm = "multipart/form-data"

	// ContentTypeZip represents "application/zip".
	ContentTypeZip = "application/zip"
)
