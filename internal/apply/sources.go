// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package apply

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/lectern/internal/manifest"
	"github.com/tomtom215/lectern/internal/models"
)

// Compile-time interface checks.
var (
	_ EventSource      = (*QueueSource)(nil)
	_ EventSource      = (*QuestionnaireSource)(nil)
	_ ManifestResolver = FixedManifest{}
)

// QueueSource reads feedback events from an offline queue file: either a
// JSON array of event objects or JSONL with one object per line. Missing
// event ids and timestamps are filled at load so the batch still orders
// and reports deterministically.
type QueueSource struct {
	path string
	now  func() time.Time
}

// NewQueueSource returns a source reading the queue file at path.
func NewQueueSource(path string) *QueueSource {
	return &QueueSource{path: path, now: time.Now}
}

// PendingEvents loads the queue file. A non-empty runID keeps only that
// run's entries; queue files may hold events from several runs.
func (s *QueueSource) PendingEvents(_ context.Context, runID string) ([]models.FeedbackEvent, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue file: %w", err)
	}

	events, err := decodeQueue(data)
	if err != nil {
		return nil, fmt.Errorf("invalid queue file %s: %w", s.path, err)
	}

	base := s.now().UTC()
	filled := events[:0]
	for i := range events {
		ev := events[i]
		if runID != "" && ev.RunID != runID {
			continue
		}
		if ev.EventID == "" {
			ev.EventID = uuid.New().String()
		}
		if ev.CreatedAt.IsZero() {
			// Filled timestamps increase with file position so the batch
			// keeps its written order.
			ev.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		}
		if ev.Source == "" {
			ev.Source = models.SourceQueue
		}
		if ev.Status == "" {
			ev.Status = models.StatusPending
		}
		filled = append(filled, ev)
	}
	return filled, nil
}

// SettleEvent is a no-op: the queue file itself is the record of what
// was reviewed, and outcomes appear in the apply report.
func (s *QueueSource) SettleEvent(context.Context, string, models.EventStatus, *string, *string, time.Time) error {
	return nil
}

// decodeQueue parses either format. A leading '[' selects the array
// form; anything else is treated as JSONL.
func decodeQueue(data []byte) ([]models.FeedbackEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var events []models.FeedbackEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, err
		}
		return events, nil
	}

	var events []models.FeedbackEvent
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev models.FeedbackEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// QuestionnaireSource reads a hand-edited questionnaire feedback file.
// Rows still carrying the exported default label (undecided) are treated
// as unreviewed and emit no event; everything the reviewer touched
// becomes one, including typo labels, which the engine rejects per
// event.
type QuestionnaireSource struct {
	path string
	now  func() time.Time
}

// NewQuestionnaireSource returns a source reading the questionnaire file
// at path.
func NewQuestionnaireSource(path string) *QuestionnaireSource {
	return &QuestionnaireSource{path: path, now: time.Now}
}

// PendingEvents loads the questionnaire. A questionnaire belongs to one
// run, so a non-empty runID that disagrees with the file is an error
// rather than an empty batch.
func (s *QuestionnaireSource) PendingEvents(_ context.Context, runID string) ([]models.FeedbackEvent, error) {
	q, err := manifest.LoadQuestionnaire(s.path)
	if err != nil {
		return nil, err
	}
	if runID != "" && q.RunID != runID {
		return nil, fmt.Errorf("questionnaire run mismatch: file=%s, requested=%s", q.RunID, runID)
	}

	base := s.now().UTC()
	events := make([]models.FeedbackEvent, 0, len(q.Reviews))
	for i, review := range q.Reviews {
		if review.Label == models.LabelUndecided {
			continue
		}
		events = append(events, models.FeedbackEvent{
			EventID: uuid.New().String(),
			RunID:   q.RunID,
			ItemID:  review.ItemID,
			// The denormalized title and URL ride along so a garbled
			// item id can still resolve through the manifest index.
			Title:     review.Title,
			URL:       review.URL,
			Label:     review.Label,
			CreatedAt: base.Add(time.Duration(i) * time.Microsecond),
			Source:    models.SourceQuestionnaire,
			Status:    models.StatusPending,
		})
	}
	return events, nil
}

// SettleEvent is a no-op: the questionnaire file is the record of
// review.
func (s *QuestionnaireSource) SettleEvent(context.Context, string, models.EventStatus, *string, *string, time.Time) error {
	return nil
}

// FixedManifest adapts one pre-loaded manifest to the ManifestResolver
// interface for single-run CLI batches. Lookups for any other run fail,
// so stray events from a mixed queue file stay unresolved instead of
// resolving against the wrong manifest.
type FixedManifest struct {
	Manifest *models.RunManifest
}

// Load returns the fixed manifest when runID matches it.
func (f FixedManifest) Load(runID string) (*models.RunManifest, error) {
	if f.Manifest == nil {
		return nil, fmt.Errorf("no manifest loaded")
	}
	if runID != "" && f.Manifest.RunID != runID {
		return nil, fmt.Errorf("manifest is for run %s, not %s", f.Manifest.RunID, runID)
	}
	return f.Manifest, nil
}
