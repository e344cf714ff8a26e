package dom

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrInaccessible marks a frame whose document cannot be read, typically
// because it is cross-origin. Such frames are skipped, never fatal.
var ErrInaccessible = errors.New("frame document is not accessible")

// DefaultMaxFrameDepth bounds frame nesting. Fetched frames may reference
// their own parent, so the frame tree is not guaranteed to be finite.
const DefaultMaxFrameDepth = 8

// FrameLoader reads the document behind a frame's src
type FrameLoader interface {
	LoadFrame(ctx context.Context, parent *Document, src string) (*Document, error)
}

// ResolveOptions configures ResolveFrames
type ResolveOptions struct {
	MaxDepth int
	Logger   *log.Logger
}

// ResolveFrames attaches child documents to every iframe and frame element in
// doc, recursively. Frames that cannot be read are recorded with their error
// and skipped; only context cancellation aborts the walk.
func ResolveFrames(ctx context.Context, doc *Document, loader FrameLoader, opts ResolveOptions) error {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxFrameDepth
	}
	return resolveFrames(ctx, doc, loader, opts, 1)
}

func resolveFrames(ctx context.Context, doc *Document, loader FrameLoader, opts ResolveOptions, depth int) error {
	if doc == nil {
		return nil
	}
	doc.Frames = nil

	elements := append(doc.Elements("iframe"), doc.Elements("frame")...)
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame := &Frame{Element: el, Src: strings.TrimSpace(Attr(el, "src"))}
		doc.Frames = append(doc.Frames, frame)

		if depth > opts.MaxDepth {
			frame.Err = fmt.Errorf("%w: nesting deeper than %d", ErrInaccessible, opts.MaxDepth)
			logSkip(opts.Logger, frame)
			continue
		}

		child, err := loadFrame(ctx, doc, loader, frame)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			frame.Err = err
			logSkip(opts.Logger, frame)
			continue
		}
		frame.Doc = child

		if err := resolveFrames(ctx, child, loader, opts, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func loadFrame(ctx context.Context, parent *Document, loader FrameLoader, frame *Frame) (*Document, error) {
	if HasAttr(frame.Element, "srcdoc") {
		frame.Inline = true
		return ParseString(Attr(frame.Element, "srcdoc"), parent.URL)
	}
	if frame.Src == "" || strings.EqualFold(frame.Src, "about:blank") {
		return ParseString("", parent.URL)
	}
	if loader == nil {
		return nil, fmt.Errorf("%w: no frame loader configured", ErrInaccessible)
	}
	return loader.LoadFrame(ctx, parent, frame.Src)
}

func logSkip(logger *log.Logger, frame *Frame) {
	if logger == nil {
		return
	}
	if errors.Is(frame.Err, ErrInaccessible) {
		logger.Debug("Skipping inaccessible frame", "src", frame.Src, "reason", frame.Err)
		return
	}
	logger.Warn("Skipping unreadable frame", "src", frame.Src, "err", frame.Err)
}

// FileLoader reads frames from the local filesystem. Only frames whose src
// resolves to a file:// URL are accessible.
type FileLoader struct{}

// LoadFrame resolves src against the parent document and parses the file
func (FileLoader) LoadFrame(_ context.Context, parent *Document, src string) (*Document, error) {
	ref, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid src %q", ErrInaccessible, src)
	}

	target := ref
	if parent != nil && parent.URL != nil {
		target = parent.URL.ResolveReference(ref)
	}
	if target.Scheme != "file" {
		return nil, fmt.Errorf("%w: %s is not a local file", ErrInaccessible, target.Redacted())
	}

	path := filepath.FromSlash(target.Path)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("frame %s: %w", src, err)
	}
	return ParseFile(path)
}
