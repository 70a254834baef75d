package api

// Wire types for the transcript backend. Field names follow the server's
// JSON exactly; everything else in the program works off these structs.

// TranscriptEntry is a single cue of the extracted transcript.
type TranscriptEntry struct {
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// TranscriptResponse is the result of POST /transcript. RagStored reports
// whether chat enrichment finished during extraction; false means the chat
// index is still being built and readiness polling is needed.
type TranscriptResponse struct {
	Success        bool              `json:"success"`
	VideoID        string            `json:"video_id"`
	Title          string            `json:"title"`
	URL            string            `json:"url"`
	Language       string            `json:"language"`
	LanguageCode   string            `json:"language_code"`
	Transcript     []TranscriptEntry `json:"transcript"`
	RagStored      bool              `json:"rag_stored"`
	Cached         bool              `json:"cached"`
	ExtractionTime float64           `json:"extraction_time"`
	Error          string            `json:"error,omitempty"`
}

// ChatStatusResponse is the result of GET /chat/status/{video_id}.
type ChatStatusResponse struct {
	Available  bool   `json:"available"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	Message    string `json:"message"`
	VideoID    string `json:"video_id"`
	RetryAfter int    `json:"retry_after,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Chat status values reported by the backend.
const (
	StatusReady          = "ready"
	StatusProcessing     = "processing"
	StatusNotFound       = "not_found"
	StatusError          = "error"
	StatusRagUnavailable = "rag_unavailable"
)

type transcriptRequest struct {
	URL string `json:"url"`
}

type chatRequest struct {
	ChatInput string `json:"chatInput"`
	VideoID   string `json:"video_id"`
	SessionID string `json:"sessionId"`
}

// ChatResponse is the result of POST /chat. Timestamps carries the backend's
// structured timestamp strings, which may each contain several clock values.
type ChatResponse struct {
	Success     bool     `json:"success"`
	Response    string   `json:"response"`
	Timestamps  []string `json:"timestamps"`
	VideoID     string   `json:"video_id"`
	Method      string   `json:"method"`
	ProcessedAt string   `json:"processed_at"`
	Error       string   `json:"error,omitempty"`
}
