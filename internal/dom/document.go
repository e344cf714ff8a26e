package dom

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a parsed page plus the frames resolved beneath it
type Document struct {
	Root   *html.Node
	URL    *url.URL // base URL; nil when unknown
	Frames []*Frame
}

// Frame is an iframe or frame element and, when readable, its document
type Frame struct {
	Element *html.Node
	Src     string
	Doc     *Document // nil when the frame could not be read
	Err     error     // why Doc is nil
	Inline  bool      // content came from the srcdoc attribute
}

// Accessible reports whether the frame's document can be traversed
func (f *Frame) Accessible() bool {
	return f != nil && f.Doc != nil
}

// Parse reads an HTML document
func Parse(r io.Reader, base *url.URL) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{Root: root, URL: base}, nil
}

// ParseString parses an HTML document held in memory
func ParseString(s string, base *url.URL) (*Document, error) {
	return Parse(strings.NewReader(s), base)
}

// ParseFile parses a local HTML file; its base URL is the absolute file:// URL
func ParseFile(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	return Parse(f, FileURL(abs))
}

// FileURL converts an absolute filesystem path into a file:// URL
func FileURL(abs string) *url.URL {
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
}

// Elements returns every element with the given tag name, in document order
func (d *Document) Elements(tag string) []*html.Node {
	if d == nil || d.Root == nil {
		return nil
	}
	return htmlquery.Find(d.Root, "//"+strings.ToLower(tag))
}

// Walk visits the document and then, depth-first, every accessible frame
// document. Inaccessible frames are skipped.
func (d *Document) Walk(fn func(*Document) error) error {
	if d == nil {
		return nil
	}
	if err := fn(d); err != nil {
		return err
	}
	for _, f := range d.Frames {
		if !f.Accessible() {
			continue
		}
		if err := f.Doc.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// SyncInlineFrames writes srcdoc frame documents back into their srcdoc
// attribute, innermost first, so modified inline frames survive rendering.
func (d *Document) SyncInlineFrames() error {
	if d == nil {
		return nil
	}
	for _, f := range d.Frames {
		if !f.Accessible() {
			continue
		}
		if err := f.Doc.SyncInlineFrames(); err != nil {
			return err
		}
		if !f.Inline {
			continue
		}
		var buf bytes.Buffer
		if err := html.Render(&buf, f.Doc.Root); err != nil {
			return fmt.Errorf("failed to render inline frame: %w", err)
		}
		SetAttr(f.Element, "srcdoc", buf.String())
	}
	return nil
}

// Render writes the document's markup
func Render(w io.Writer, d *Document) error {
	if d == nil || d.Root == nil {
		return fmt.Errorf("empty document")
	}
	return html.Render(w, d.Root)
}

// RenderString renders the document to a string
func RenderString(d *Document) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteFrames writes every file-backed frame document under dir, keeping the
// path the frame was referenced by. Frames referenced by absolute or parent
// paths are skipped. It returns the files written.
func WriteFrames(dir string, d *Document) ([]string, error) {
	var written []string
	var visit func(doc *Document, rel string) error
	visit = func(doc *Document, rel string) error {
		for _, f := range doc.Frames {
			if !f.Accessible() {
				continue
			}
			childRel := rel
			if !f.Inline && f.Doc.URL != nil && f.Doc.URL.Scheme == "file" {
				target := filepath.Clean(filepath.Join(filepath.Dir(rel), filepath.FromSlash(f.Src)))
				if !filepath.IsAbs(f.Src) && !strings.HasPrefix(target, "..") {
					out := filepath.Join(dir, target)
					if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
						return fmt.Errorf("failed to create frame directory: %w", err)
					}
					var buf bytes.Buffer
					if err := Render(&buf, f.Doc); err != nil {
						return err
					}
					if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
						return fmt.Errorf("failed to write frame %s: %w", f.Src, err)
					}
					written = append(written, out)
					childRel = target
				}
			}
			if err := visit(f.Doc, childRel); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(d, "index.html"); err != nil {
		return written, err
	}
	return written, nil
}
