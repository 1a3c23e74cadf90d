// Package models defines the request and response types exchanged over the
// HTTP API, and the service error taxonomy shared across components.
package models

// FileEntry is a single archive entry as shown to the caller.
type FileEntry struct {
	// Path is the display path, with any common root directory stripped.
	Path string `json:"path"`
}

// ListFilesResponse is the response body for the list-files operation.
type ListFilesResponse struct {
	// Files lists the archive entries in their original archive order.
	Files []FileEntry `json:"files"`
	// SessionID identifies the stored upload for later generation requests.
	SessionID string `json:"session_id"`
	// ExpiresAt is the session expiry timestamp in RFC 3339 UTC form.
	ExpiresAt string `json:"expires_at"`
}

// GenerateRequest is the request body for the generate-md operation.
type GenerateRequest struct {
	// SessionID references a session returned by a previous list-files call.
	SessionID string `json:"session_id"`
	// Files are the display paths to include, in the desired document order.
	Files []string `json:"files"`
}
