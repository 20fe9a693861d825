package provider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"notepad/models"
)

var noteStreamTypes = []string{models.MIMETypeTextPlain}

// GetStreamTypes lists the stream types offered for uri that match
// mimeFilter. Only single notes can be streamed; other valid targets return
// nil.
func (p *Provider) GetStreamTypes(uri, mimeFilter string) ([]string, error) {
	route, err := p.schema.Match(uri)
	if err != nil {
		return nil, err
	}
	if route.Kind != KindNoteItem {
		return nil, nil
	}
	return filterMIMETypes(noteStreamTypes, mimeFilter), nil
}

// OpenTypedStream returns a reader producing the note as plain text. A
// producer goroutine writes into a pipe while the caller reads; the caller
// must close the reader.
func (p *Provider) OpenTypedStream(ctx context.Context, uri, mimeFilter string) (io.ReadCloser, string, error) {
	types, err := p.GetStreamTypes(uri, mimeFilter)
	if err != nil {
		return nil, "", err
	}
	if len(types) == 0 {
		return nil, "", fmt.Errorf("%w: %s for %q", ErrStreamUnsupported, uri, mimeFilter)
	}

	c, err := p.Query(ctx, uri, []string{models.ColumnID, models.NoteColumnNote, models.NoteColumnTitle}, "", nil, "")
	if err != nil {
		return nil, "", err
	}
	if !c.MoveToFirst() {
		return nil, "", fmt.Errorf("%w: unable to query %s", ErrNotFound, uri)
	}
	title := c.String(models.NoteColumnTitle)
	body := c.String(models.NoteColumnNote)

	pr, pw := io.Pipe()
	go p.writeNoteText(pw, uri, title, body)

	return pr, types[0], nil
}

// writeNoteText closes the write end on every path so the reader never
// blocks forever.
func (p *Provider) writeNoteText(pw *io.PipeWriter, uri, title, body string) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("note writer panicked: %v", r)
		}
		if err != nil {
			p.logger.Warn("error writing note stream", "uri", uri, "error", err)
		}
		pw.CloseWithError(err)
	}()

	err = WriteNoteText(pw, title, body)
}

// WriteNoteText writes the title, a blank line and the body, each
// newline-terminated, as UTF-8.
func WriteNoteText(w io.Writer, title, body string) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw, body); err != nil {
		return err
	}
	return bw.Flush()
}

// filterMIMETypes keeps the offered types accepted by filter, which may use
// "*/*" or "type/*" wildcards. An empty filter accepts everything.
func filterMIMETypes(offered []string, filter string) []string {
	filter = strings.TrimSpace(filter)
	var out []string
	for _, t := range offered {
		if mimeMatches(t, filter) {
			out = append(out, t)
		}
	}
	return out
}

func mimeMatches(concrete, filter string) bool {
	if filter == "" || filter == "*/*" {
		return true
	}
	if strings.EqualFold(concrete, filter) {
		return true
	}
	if strings.HasSuffix(filter, "/*") {
		prefix := strings.TrimSuffix(filter, "*")
		return strings.HasPrefix(strings.ToLower(concrete), strings.ToLower(prefix))
	}
	return false
}
