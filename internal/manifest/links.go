// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/token"
)

// FeedbackLink carries the signed one-click URLs for a single manifest
// entry, ready to embed in a report or mail.
type FeedbackLink struct {
	ItemID      string `json:"item_id"`
	Title       string `json:"title,omitempty"`
	PositiveURL string `json:"positive_url"`
	NegativeURL string `json:"negative_url"`
}

// LinkOptions configures feedback link generation.
type LinkOptions struct {
	// Secret signs the embedded tokens. Required.
	Secret []byte
	// BaseURL is the public address of the feedback endpoint, without the
	// /feedback path. Required.
	BaseURL string
	// TTL bounds token validity from Now. Required, positive.
	TTL time.Duration
	// Reviewer, when set, is embedded in every claim.
	Reviewer string
	// Now anchors expiry computation. Zero means time.Now.
	Now time.Time
}

// BuildFeedbackLinks issues a positive and a negative signed URL for every
// manifest entry. Entries keep their manifest order. The corpus id, when
// known, rides along in the claim so clicks resolve without a manifest
// lookup at apply time.
func BuildFeedbackLinks(m *models.RunManifest, opts LinkOptions) ([]FeedbackLink, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if opts.TTL <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	if err := Validate(m); err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	expiresAt := now.Add(opts.TTL).Unix()
	base := strings.TrimRight(opts.BaseURL, "/")

	links := make([]FeedbackLink, 0, len(m.Papers))
	for _, entry := range m.Papers {
		link := FeedbackLink{ItemID: entry.ItemID, Title: entry.Title}

		for _, label := range models.DecisiveLabels {
			tok, err := token.Sign(token.Claim{
				RunID:           m.RunID,
				ItemID:          entry.ItemID,
				Label:           label,
				SemanticPaperID: models.NormalizePaperID(entry.SemanticPaperID),
				Reviewer:        opts.Reviewer,
				ExpiresAt:       expiresAt,
			}, opts.Secret)
			if err != nil {
				return nil, fmt.Errorf("failed to sign %s token for %s: %w", label, entry.ItemID, err)
			}

			u := base + "/feedback?t=" + url.QueryEscape(tok)
			switch label {
			case models.LabelPositive:
				link.PositiveURL = u
			case models.LabelNegative:
				link.NegativeURL = u
			}
		}

		links = append(links, link)
	}
	return links, nil
}
