package types

// SummarizeTextRequest is the JSON body for direct text summarization.
type SummarizeTextRequest struct {
	Text        string `json:"text" binding:"required"`
	SummaryType string `json:"summary_type,omitempty"`
	MaxLength   int    `json:"max_length,omitempty"`
	Language    string `json:"language,omitempty"`
	AutoAdjust  *bool  `json:"auto_adjust,omitempty"`
}

// SummarizeUploadRequest is the metadata part of a multipart document upload.
type SummarizeUploadRequest struct {
	Title       string `json:"title"`
	SummaryType string `json:"summary_type,omitempty"`
	MaxLength   int    `json:"max_length,omitempty"`
	Language    string `json:"language,omitempty"`
	MaxPages    int    `json:"max_pages,omitempty"` // 0 = all pages
}
