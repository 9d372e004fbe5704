// Package gdoc implements the document source on the Google Docs API:
// the authoring document's paragraphs with their bold styling, plus the
// revision identifier the watcher polls.
package gdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agilequiz/internal/domain/entities"
)

const defaultBaseURL = "https://docs.googleapis.com/v1"

// Source reads one document.
type Source struct {
	documentID string
	token      string

	baseURL string
	client  *http.Client
}

// Option customises the source; used mainly by tests.
type Option func(*Source)

func WithBaseURL(url string) Option {
	return func(s *Source) { s.baseURL = url }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

func New(documentID, token string, opts ...Option) *Source {
	s := &Source{
		documentID: documentID,
		token:      token,
		baseURL:    defaultBaseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wire shapes of the documents.get response, reduced to the fields the
// extractor needs. Structural elements without a paragraph (tables,
// section breaks) decode with a nil Paragraph and are skipped.
type document struct {
	RevisionID string `json:"revisionId"`
	Body       struct {
		Content []struct {
			Paragraph *struct {
				Elements []struct {
					TextRun *struct {
						Content   string `json:"content"`
						TextStyle struct {
							Bold bool `json:"bold"`
						} `json:"textStyle"`
					} `json:"textRun"`
				} `json:"elements"`
			} `json:"paragraph"`
		} `json:"content"`
	} `json:"body"`
}

// RevisionID fetches only the document's revision token.
func (s *Source) RevisionID(ctx context.Context) (string, error) {
	doc, err := s.fetch(ctx, "?fields=revisionId")
	if err != nil {
		return "", err
	}
	return doc.RevisionID, nil
}

// Paragraphs fetches the document body as styled paragraph runs.
func (s *Source) Paragraphs(ctx context.Context) ([]entities.Paragraph, error) {
	doc, err := s.fetch(ctx, "")
	if err != nil {
		return nil, err
	}

	var out []entities.Paragraph
	for _, item := range doc.Body.Content {
		if item.Paragraph == nil {
			continue
		}

		var p entities.Paragraph
		for _, el := range item.Paragraph.Elements {
			if el.TextRun == nil {
				continue
			}
			p.Runs = append(p.Runs, entities.Run{
				Text: el.TextRun.Content,
				Bold: el.TextRun.TextStyle.Bold,
			})
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Source) fetch(ctx context.Context, query string) (*document, error) {
	url := fmt.Sprintf("%s/documents/%s%s", s.baseURL, s.documentID, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("docs api returned %s: %s", resp.Status, payload)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}
