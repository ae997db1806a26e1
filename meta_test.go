package routemodules

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDocument(t *testing.T) {
	tests := []struct {
		name  string
		meta  []MetaDescriptor
		links []LinkDescriptor
		want  string
	}{
		{
			name: "empty head",
			want: `<!doctype html><html lang="en"><head><meta charset="utf-8"></head><body>body</body></html>`,
		},
		{
			name: "title and description",
			meta: []MetaDescriptor{
				{Title: "A & B"},
				{Name: "description", Content: `say "hi"`},
			},
			want: `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>A &amp; B</title>` +
				`<meta name="description" content="say &#34;hi&#34;"></head><body>body</body></html>`,
		},
		{
			name: "only the last title is rendered",
			meta: []MetaDescriptor{{Title: "Parent"}, {Name: "robots", Content: "none"}, {Title: "Child"}},
			want: `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Child</title>` +
				`<meta name="robots" content="none"></head><body>body</body></html>`,
		},
		{
			name: "custom charset replaces the default",
			meta: []MetaDescriptor{{CharSet: "latin1"}, {Property: "og:title", Content: "T"}},
			want: `<!doctype html><html lang="en"><head><meta charset="latin1">` +
				`<meta property="og:title" content="T"></head><body>body</body></html>`,
		},
		{
			name: "links",
			links: []LinkDescriptor{
				{Rel: "stylesheet", Href: "/styles.css"},
				{Rel: "preload", Href: "/font.woff2", As: "font", Type: "font/woff2", CrossOrigin: "anonymous"},
			},
			want: `<!doctype html><html lang="en"><head><meta charset="utf-8">` +
				`<link rel="stylesheet" href="/styles.css">` +
				`<link rel="preload" href="/font.woff2" type="font/woff2" as="font" crossorigin="anonymous">` +
				`</head><body>body</body></html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Document(tt.meta, tt.links, textComponent("body")).Render(context.Background(), &buf); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if diff := cmp.Diff(buf.String(), tt.want); diff != "" {
				t.Errorf("Document mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

func TestDocumentTitle(t *testing.T) {
	meta := []MetaDescriptor{{Title: "First"}, {Name: "description", Content: "x"}, {Title: "Last"}}
	if got := DocumentTitle(meta); got != "Last" {
		t.Errorf("expected %q, got %q", "Last", got)
	}
	if got := DocumentTitle(nil); got != "" {
		t.Errorf("expected empty title, got %q", got)
	}
}
