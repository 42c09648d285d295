// Package export assembles session content into a canonical document and
// serializes it to the supported output formats: Markdown, an HTML-shell
// pseudo-doc, a JSON manifest, a plain-text chat transcript, and a paginated
// PDF.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/minicelia/celia/internal/types"
)

// ErrPrivilegeRequired gates the expediente and manifest exports behind the
// privileged flag.
var ErrPrivilegeRequired = errors.New("export requires privileged access")

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// File is one rendered export artifact.
type File struct {
	Name     string
	MIMEType string
	Content  []byte
}

// Engine renders exports from a session snapshot.
type Engine struct {
	expedienteID string
}

// NewEngine creates an export engine. expedienteID feeds the PDF identity
// box and file naming; empty falls back to a fixed placeholder.
func NewEngine(expedienteID string) *Engine {
	return &Engine{expedienteID: expedienteID}
}

// Render produces the export artifact for the given format. Privileged
// formats (md, doc, json) return ErrPrivilegeRequired when privileged is
// false; the chat transcript and the PDF are open to every user.
func (e *Engine) Render(format string, snap types.Snapshot, privileged bool) (*File, error) {
	switch format {
	case "md":
		if !privileged {
			return nil, ErrPrivilegeRequired
		}
		return &File{
			Name:     "expediente.md",
			MIMEType: "text/markdown; charset=utf-8",
			Content:  []byte(BuildMarkdown(snap.State.Ctx, snap.Draft)),
		}, nil
	case "doc":
		if !privileged {
			return nil, ErrPrivilegeRequired
		}
		return &File{
			Name:     "expediente.doc",
			MIMEType: "application/msword",
			Content:  []byte(MarkdownToDoc(BuildMarkdown(snap.State.Ctx, snap.Draft))),
		}, nil
	case "json":
		if !privileged {
			return nil, ErrPrivilegeRequired
		}
		manifest, err := BuildManifest(snap.State.Ctx)
		if err != nil {
			return nil, err
		}
		return &File{
			Name:     "manifest.json",
			MIMEType: "application/json; charset=utf-8",
			Content:  manifest,
		}, nil
	case "chat":
		return &File{
			Name:     "chat.txt",
			MIMEType: "text/plain; charset=utf-8",
			Content:  []byte(BuildTranscript(snap.State.Chat)),
		}, nil
	case "pdf":
		pdf, err := BuildPDF(e.expedienteID, SectionsFromState(snap.State))
		if err != nil {
			return nil, err
		}
		return &File{
			Name:     PDFFileName(e.expedienteID, time.Now()),
			MIMEType: "application/pdf",
			Content:  pdf,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// SectionsFromState converts canonical sections into PDF tuples, preserving
// canonical order.
func SectionsFromState(state types.SessionState) []PDFSection {
	sections := make([]PDFSection, 0, len(state.Steps))
	for _, step := range state.Steps {
		sections = append(sections, PDFSection{
			ID:      string(step.ID),
			Title:   step.Name,
			Content: step.Content,
		})
	}
	return sections
}
