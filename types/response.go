package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ProcessingStatus is streamed to the client while a document moves
// through the pipeline (SSE or websocket).
type ProcessingStatus struct {
	Status   string  `json:"status"` // processing | completed | error
	Stage    string  `json:"stage"`  // extracting | chunking | summarizing
	Message  string  `json:"message"`
	Progress float64 `json:"progress,omitempty"`
}
