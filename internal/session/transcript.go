package session

import "github.com/tubetalk/tubetalk/internal/api"

// Transcript is the immutable transcript document for one video. It is
// created once per successful fetch and replaced wholesale on retry.
type Transcript struct {
	VideoID      string
	Title        string
	Language     string
	LanguageCode string
	Segments     []Segment
	Cached       bool
	// ChatEnrichmentComplete mirrors the backend's rag_stored flag; false
	// means readiness polling is needed before chat can be used.
	ChatEnrichmentComplete bool
	ExtractionSeconds      float64
}

// Segment is one transcript cue. Display values are preformatted by the
// backend; the seconds pair drives seeking.
type Segment struct {
	DisplayStart string
	DisplayEnd   string
	Text         string
	StartSeconds float64
	EndSeconds   float64
}

func transcriptFromResponse(resp *api.TranscriptResponse) *Transcript {
	doc := &Transcript{
		VideoID:                resp.VideoID,
		Title:                  resp.Title,
		Language:               resp.Language,
		LanguageCode:           resp.LanguageCode,
		Cached:                 resp.Cached,
		ChatEnrichmentComplete: resp.RagStored,
		ExtractionSeconds:      resp.ExtractionTime,
	}
	doc.Segments = make([]Segment, 0, len(resp.Transcript))
	for _, e := range resp.Transcript {
		doc.Segments = append(doc.Segments, Segment{
			DisplayStart: e.Start,
			DisplayEnd:   e.End,
			Text:         e.Text,
			StartSeconds: e.StartSeconds,
			EndSeconds:   e.EndSeconds,
		})
	}
	return doc
}
