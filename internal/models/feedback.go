// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package models

import (
	"strings"
	"time"
)

// Label classifies a reviewer's verdict on a single recommended item.
type Label string

const (
	// LabelPositive marks an item the reviewer wants more of.
	LabelPositive Label = "positive"

	// LabelNegative marks an item the reviewer wants less of.
	LabelNegative Label = "negative"

	// LabelUndecided defers judgment. Accepted from questionnaire and
	// queue sources only; link tokens never carry it. Applying an
	// undecided event mutates nothing.
	LabelUndecided Label = "undecided"
)

// ValidLabels contains every label the system accepts anywhere.
var ValidLabels = []Label{LabelPositive, LabelNegative, LabelUndecided}

// DecisiveLabels contains the labels allowed in signed feedback links.
var DecisiveLabels = []Label{LabelPositive, LabelNegative}

// IsValidLabel checks whether l is one of the known labels.
func IsValidLabel(l Label) bool {
	for _, valid := range ValidLabels {
		if l == valid {
			return true
		}
	}
	return false
}

// IsDecisive reports whether the label expresses a preference that
// mutates the profile when applied.
func (l Label) IsDecisive() bool {
	return l == LabelPositive || l == LabelNegative
}

// Source records how a feedback event entered the system.
type Source string

const (
	// SourceEmailLink is a click on a signed link in a delivered digest.
	SourceEmailLink Source = "email_link"

	// SourceWebViewer is a click from the hosted run report viewer.
	SourceWebViewer Source = "web_viewer"

	// SourceQuestionnaire is a hand-edited questionnaire feedback file.
	SourceQuestionnaire Source = "questionnaire"

	// SourceQueue is an offline queue file drained by the CLI.
	SourceQueue Source = "queue"

	// SourceRemote is an event pulled from a hosted relay.
	SourceRemote Source = "remote"
)

// ValidSources contains all recognized event sources.
var ValidSources = []Source{
	SourceEmailLink,
	SourceWebViewer,
	SourceQuestionnaire,
	SourceQueue,
	SourceRemote,
}

// IsValidSource checks whether s is one of the known sources.
func IsValidSource(s Source) bool {
	for _, valid := range ValidSources {
		if s == valid {
			return true
		}
	}
	return false
}

// FeedbackEvent is the durable record of a single feedback signal.
// One row per click, questionnaire line, or queue entry; the event store
// doubles as the apply queue (status 'pending') and the audit log
// (terminal statuses are never mutated again).
//
// Key Fields:
//   - EventID: server-generated UUID, primary key
//   - RunID: recommendation run the item appeared in
//   - ItemID: per-run item identifier (e.g. "p03")
//   - Label: positive, negative, or undecided
//   - Status: lifecycle state, see EventStatus
//   - Title/URL: resolution hints from file sources; a hand-edited
//     questionnaire line with a garbled item id still resolves through
//     the manifest's title+URL lookup. Not persisted by the event store.
//   - ResolvedSemanticPaperID: stable corpus id when the token carried one
//   - AppliedAt/Error: set when the apply engine settles the event
type FeedbackEvent struct {
	EventID                 string      `json:"event_id"`
	RunID                   string      `json:"run_id"`
	ItemID                  string      `json:"item_id"`
	Title                   string      `json:"title,omitempty"`
	URL                     string      `json:"url,omitempty"`
	Label                   Label       `json:"label"`
	Reviewer                *string     `json:"reviewer,omitempty"`
	CreatedAt               time.Time   `json:"created_at"`
	Source                  Source      `json:"source"`
	Status                  EventStatus `json:"status"`
	ResolvedSemanticPaperID *string     `json:"resolved_semantic_paper_id,omitempty"`
	AppliedAt               *time.Time  `json:"applied_at,omitempty"`
	Error                   *string     `json:"error,omitempty"`
}

// FeedbackRun is a published recommendation run: the rendered report HTML
// keyed by run_id, served read-only by the public viewer.
type FeedbackRun struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	ReportHTML string    `json:"report_html"`
}

// RunIDLayout is the canonical run identifier format: UTC wall-clock with
// colons replaced so the id doubles as a filename (manifests, reports).
// The trailing Z is literal.
const RunIDLayout = "2006-01-02T15-04-05Z"

// NewRunID formats t as a canonical run identifier.
func NewRunID(t time.Time) string {
	return t.UTC().Format(RunIDLayout)
}

// IsValidRunID checks whether id parses as a canonical run identifier.
func IsValidRunID(id string) bool {
	_, err := time.Parse(RunIDLayout, id)
	return err == nil
}

// NormalizePaperID canonicalizes a corpus identifier. Bare numeric ids
// (as returned by some upstream APIs) gain the "CorpusId:" prefix;
// anything else passes through trimmed.
func NormalizePaperID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if isAllDigits(id) {
		return "CorpusId:" + id
	}
	return id
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
