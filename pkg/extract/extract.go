// Package extract turns raw file bytes into plain text. PDFs go through a
// Tika server; markdown and notes are UTF-8 text already and pass through
// directly.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docvault-go/internal/config"
	"docvault-go/internal/errs"
	"docvault-go/internal/model"
)

// Extractor produces text from raw document bytes. Failures are reported
// as *errs.ExtractionError.
type Extractor interface {
	Extract(ctx context.Context, raw []byte, source, kind string) (string, error)
}

type tikaExtractor struct {
	serverURL string
	client    *http.Client
}

// NewExtractor creates the default extractor backed by a Tika server.
func NewExtractor(cfg config.TikaConfig) Extractor {
	return &tikaExtractor{
		serverURL: cfg.ServerURL,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *tikaExtractor) Extract(ctx context.Context, raw []byte, source, kind string) (string, error) {
	if len(raw) == 0 {
		return "", &errs.ExtractionError{Source: source, Err: fmt.Errorf("file is empty")}
	}

	var text string
	var err error
	switch kind {
	case model.KindPDF:
		text, err = e.extractPDF(ctx, raw)
	case model.KindMarkdown, model.KindNotes:
		text, err = extractPlaintext(raw)
	default:
		err = fmt.Errorf("unsupported kind %q", kind)
	}
	if err != nil {
		return "", &errs.ExtractionError{Source: source, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &errs.ExtractionError{Source: source, Err: fmt.Errorf("no text content extracted")}
	}
	return text, nil
}

func (e *tikaExtractor) extractPDF(ctx context.Context, raw []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "PUT", e.serverURL+"/tika", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create tika request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call tika: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("tika returned [%d]: %s", resp.StatusCode, string(body))
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return "", fmt.Errorf("failed to read tika response: %w", err)
	}
	return buf.String(), nil
}

// extractPlaintext decodes raw as UTF-8, dropping invalid byte sequences.
func extractPlaintext(raw []byte) (string, error) {
	return strings.ToValidUTF8(string(raw), ""), nil
}
