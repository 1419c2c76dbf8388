package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ResolveLocalImages rewrites relative img src values of a full HTML document
// to file:// URLs under baseDir, so a browser rendering the document from a
// temporary file still finds images stored next to the markdown source.
// Paths escaping baseDir are left untouched. An empty baseDir is a no-op.
func ResolveLocalImages(document, baseDir string) (string, error) {
	if baseDir == "" {
		return document, nil
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", err
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for i, attr := range n.Attr {
				if attr.Key == "src" {
					if resolved, ok := resolveLocalPath(attr.Val, absBase); ok {
						n.Attr[i].Val = resolved
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// resolveLocalPath returns the file:// URL for a relative path under base.
func resolveLocalPath(ref, base string) (string, bool) {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return "", false
	}
	if u, err := url.Parse(ref); err != nil || u.Scheme != "" {
		return "", false
	}
	if filepath.IsAbs(ref) || strings.HasPrefix(ref, "/") {
		return "", false
	}

	target := filepath.Join(base, filepath.FromSlash(ref))
	if !isWithin(target, base) {
		return "", false
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(target)}).String(), true
}

// isWithin reports whether path is base or below it.
func isWithin(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
