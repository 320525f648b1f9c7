package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"bdpl/internal/language"
	"bdpl/internal/model"
)

// SchemaVersion identifies the JSON document layout.
const SchemaVersion = "bdpl.disc.v1"

// Document is the bdpl.disc.v1 output schema.
type Document struct {
	SchemaVersion string        `json:"schema_version"`
	Disc          DiscDoc       `json:"disc"`
	Playlists     []PlaylistDoc `json:"playlists"`
	Clips         []ClipDoc     `json:"clips"`
	Episodes      []EpisodeDoc  `json:"episodes"`
	Warnings      []WarningDoc  `json:"warnings"`
	Analysis      AnalysisDoc   `json:"analysis"`
}

type DiscDoc struct {
	Path        string `json:"path"`
	GeneratedAt string `json:"generated_at"`
	AnalysisID  string `json:"analysis_id,omitempty"`
}

type PlaylistDoc struct {
	MPLS           string        `json:"mpls"`
	DurationMS     float64       `json:"duration_ms"`
	PlayItems      []PlayItemDoc `json:"play_items"`
	Chapters       []ChapterDoc  `json:"chapters,omitempty"`
	Classification string        `json:"classification,omitempty"`
	SignatureLoose []SegmentKeyDoc `json:"signature_loose"`
}

type PlayItemDoc struct {
	ClipID     string      `json:"clip_id"`
	M2TS       string      `json:"m2ts"`
	InTimeMS   float64     `json:"in_time_ms"`
	OutTimeMS  float64     `json:"out_time_ms"`
	DurationMS float64     `json:"duration_ms"`
	Label      string      `json:"label"`
	Streams    []StreamDoc `json:"streams"`
}

type StreamDoc struct {
	PID      uint16 `json:"pid"`
	Codec    string `json:"codec"`
	Lang     string `json:"lang,omitempty"`
	Language string `json:"language,omitempty"`
}

type ChapterDoc struct {
	MarkID    int     `json:"mark_id"`
	MarkType  int     `json:"mark_type"`
	Timestamp float64 `json:"timestamp"`
}

type SegmentKeyDoc struct {
	ClipID string `json:"clip_id"`
	InMS   int64  `json:"in_ms"`
	OutMS  int64  `json:"out_ms"`
}

type ClipDoc struct {
	ClipID  string      `json:"clip_id"`
	Streams []StreamDoc `json:"streams"`
}

type EpisodeDoc struct {
	Episode    int          `json:"episode"`
	Playlist   string       `json:"playlist"`
	DurationMS float64      `json:"duration_ms"`
	Confidence float64      `json:"confidence"`
	Segments   []SegmentDoc `json:"segments"`
	Alternates []string     `json:"alternates,omitempty"`
}

type SegmentDoc struct {
	ClipID     string  `json:"clip_id"`
	InMS       float64 `json:"in_ms"`
	OutMS      float64 `json:"out_ms"`
	DurationMS float64 `json:"duration_ms"`
	Label      string  `json:"label"`
}

type WarningDoc struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
}

type AnalysisDoc struct {
	Classifications map[string]string `json:"classifications"`
	Hints           HintsDoc          `json:"hints"`
}

type HintsDoc struct {
	Titles         map[string][]string `json:"titles"`
	IGChapterMarks []int               `json:"ig_chapter_marks"`
	IGDirectPlay   []string            `json:"ig_direct_play,omitempty"`
}

// BuildDocument converts an analysis into the serializable document.
// generatedAt is the caller's clock so repeated serialization stays testable.
func BuildDocument(da *model.DiscAnalysis, generatedAt time.Time) Document {
	doc := Document{
		SchemaVersion: SchemaVersion,
		Disc: DiscDoc{
			Path:        da.Path,
			GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
			AnalysisID:  da.AnalysisID,
		},
		Playlists: make([]PlaylistDoc, 0, len(da.Playlists)),
		Clips:     make([]ClipDoc, 0, len(da.Clips)),
		Episodes:  make([]EpisodeDoc, 0, len(da.Episodes)),
		Warnings:  make([]WarningDoc, 0, len(da.Warnings)),
	}

	for _, pl := range da.Playlists {
		doc.Playlists = append(doc.Playlists, playlistDoc(pl))
	}

	clipIDs := make([]string, 0, len(da.Clips))
	for id := range da.Clips {
		clipIDs = append(clipIDs, id)
	}
	sort.Strings(clipIDs)
	for _, id := range clipIDs {
		doc.Clips = append(doc.Clips, ClipDoc{
			ClipID:  id,
			Streams: streamDocs(da.Clips[id].Streams),
		})
	}

	for _, ep := range da.Episodes {
		doc.Episodes = append(doc.Episodes, episodeDoc(ep))
	}
	for _, w := range da.Warnings {
		doc.Warnings = append(doc.Warnings, WarningDoc{
			Code:    string(w.Code),
			Message: w.Message,
			Context: w.Context,
		})
	}

	classifications := make(map[string]string)
	for mpls, class := range da.Classifications() {
		classifications[mpls] = string(class)
	}
	titles := make(map[string][]string)
	for title, stems := range da.Hints.TitlePlaylists {
		titles[strconv.Itoa(title)] = stems
	}
	doc.Analysis = AnalysisDoc{
		Classifications: classifications,
		Hints: HintsDoc{
			Titles:         titles,
			IGChapterMarks: append([]int(nil), da.Hints.IGChapterMarks...),
			IGDirectPlay:   append([]string(nil), da.Hints.IGDirectPlay...),
		},
	}
	return doc
}

func playlistDoc(pl *model.Playlist) PlaylistDoc {
	doc := PlaylistDoc{
		MPLS:           pl.MPLS,
		DurationMS:     pl.DurationMS(),
		Classification: string(pl.Classification),
		PlayItems:      make([]PlayItemDoc, 0, len(pl.PlayItems)),
	}
	for _, pi := range pl.PlayItems {
		doc.PlayItems = append(doc.PlayItems, PlayItemDoc{
			ClipID:     pi.ClipID,
			M2TS:       pi.M2TS,
			InTimeMS:   model.TicksToMS(pi.InTime),
			OutTimeMS:  model.TicksToMS(pi.OutTime),
			DurationMS: pi.DurationMS(),
			Label:      string(pi.Label),
			Streams:    streamDocs(pi.Streams),
		})
	}
	for _, ch := range pl.Chapters {
		doc.Chapters = append(doc.Chapters, ChapterDoc{
			MarkID:    ch.ID,
			MarkType:  int(ch.Type),
			Timestamp: model.TicksToMS(ch.Timestamp),
		})
	}
	for _, key := range pl.SignatureLoose(model.DefaultQuantMS) {
		doc.SignatureLoose = append(doc.SignatureLoose, SegmentKeyDoc{
			ClipID: key.ClipID,
			InMS:   key.InMS,
			OutMS:  key.OutMS,
		})
	}
	return doc
}

func episodeDoc(ep model.Episode) EpisodeDoc {
	doc := EpisodeDoc{
		Episode:    ep.Number,
		Playlist:   ep.Playlist,
		DurationMS: ep.DurationMS,
		Confidence: ep.Confidence,
		Alternates: ep.Alternates,
		Segments:   make([]SegmentDoc, 0, len(ep.Segments)),
	}
	for _, seg := range ep.Segments {
		doc.Segments = append(doc.Segments, SegmentDoc{
			ClipID:     seg.ClipID,
			InMS:       seg.InMS,
			OutMS:      seg.OutMS,
			DurationMS: seg.DurationMS,
			Label:      string(seg.Label),
		})
	}
	return doc
}

func streamDocs(streams []model.Stream) []StreamDoc {
	docs := make([]StreamDoc, 0, len(streams))
	for _, s := range streams {
		doc := StreamDoc{
			PID:   s.PID,
			Codec: string(s.Codec),
			Lang:  s.Lang,
		}
		if s.Lang != "" {
			doc.Language = language.DisplayName(s.Lang)
		}
		docs = append(docs, doc)
	}
	return docs
}

// WriteJSON serializes the analysis to path, creating parent directories.
func WriteJSON(da *model.DiscAnalysis, path string, pretty bool, generatedAt time.Time) error {
	data, err := MarshalJSON(da, pretty, generatedAt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// MarshalJSON renders the bdpl.disc.v1 document.
func MarshalJSON(da *model.DiscAnalysis, pretty bool, generatedAt time.Time) ([]byte, error) {
	doc := BuildDocument(da, generatedAt)
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}
