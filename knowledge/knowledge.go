// Package knowledge serves Algorand developer documentation from an fs.FS,
// as tools and as algorand://knowledge/ resources.
package knowledge

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/mcp"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
)

// URIPrefix is the resource namespace served by Docs.
const URIPrefix = "algorand://knowledge/"

const (
	taxonomyURI  = URIPrefix + "taxonomy"
	markdownMIME = "text/markdown"
	maxMatches   = 5
)

//go:embed docs
var embedded embed.FS

type contextKey struct{}

// WithFS overrides the documentation file system for calls made with ctx.
func WithFS(ctx context.Context, f fs.FS) context.Context {
	return context.WithValue(ctx, contextKey{}, f)
}

// Docs is a documentation tree of markdown files grouped into category
// directories.
type Docs struct {
	fsys fs.FS
}

// New returns Docs over fsys.
func New(fsys fs.FS) *Docs {
	return &Docs{fsys: fsys}
}

// Default returns the documentation embedded in the binary.
func Default() *Docs {
	sub, err := fs.Sub(embedded, "docs")
	if err != nil {
		panic(err)
	}
	return New(sub)
}

func (d *Docs) files(ctx context.Context) fs.FS {
	if f, ok := ctx.Value(contextKey{}).(fs.FS); ok {
		return f
	}
	return d.fsys
}

// Entry is one document in the taxonomy.
type Entry struct {
	Path  string
	Title string
}

// Category groups the documents of one directory.
type Category struct {
	Name      string
	Documents []Entry
}

// Taxonomy lists every markdown document, grouped by top-level directory.
// Documents at the root are grouped under "general".
func (d *Docs) Taxonomy(ctx context.Context) ([]Category, error) {
	fsys := d.files(ctx)
	var categories []Category
	index := make(map[string]int)
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		name := "general"
		if dir, _, ok := strings.Cut(p, "/"); ok {
			name = dir
		}
		i, ok := index[name]
		if !ok {
			i = len(categories)
			index[name] = i
			categories = append(categories, Category{Name: name})
		}
		title, err := readTitle(fsys, p)
		if err != nil {
			return err
		}
		categories[i].Documents = append(categories[i].Documents, Entry{Path: strings.TrimSuffix(p, ".md"), Title: title})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk knowledge docs: %w", err)
	}
	return categories, nil
}

// Read returns the content of the document at name. The ".md" extension is
// optional.
func (d *Docs) Read(ctx context.Context, name string) (string, error) {
	p, err := docPath(name)
	if err != nil {
		return "", err
	}
	f, err := d.files(ctx).Open(p)
	if err != nil {
		return "", tool.InvalidParamsf("unknown knowledge document %q", name)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read knowledge document %s: %w", p, err)
	}
	return string(content), nil
}

func docPath(name string) (string, error) {
	p := strings.TrimPrefix(path.Clean("/"+name), "/")
	if p == "" || !fs.ValidPath(p) {
		return "", tool.InvalidParamsf("invalid knowledge document path %q", name)
	}
	if path.Ext(p) != ".md" {
		p += ".md"
	}
	return p, nil
}

func readTitle(fsys fs.FS, p string) (string, error) {
	content, err := fs.ReadFile(fsys, p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	for line := range strings.Lines(string(content)) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return title, nil
		}
	}
	return strings.TrimSuffix(path.Base(p), ".md"), nil
}

// Tools returns the documentation tools.
func (d *Docs) Tools() *tool.Set {
	return tool.MustSet(
		tool.Tool{
			Definition: tool.Definition{
				Name:        "get_knowledge_doc",
				Description: "Get Algorand documentation by path, e.g. developer/accounts",
				InputSchema: schema.Obj(schema.Prop{
					Name:     "documents",
					Schema:   schema.Arr(schema.Str("Document path"), "Document paths from get_knowledge_taxonomy"),
					Required: true,
				}),
			},
			Func: d.getDocs,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "get_knowledge_taxonomy",
				Description: "List the available documentation, grouped by category",
				InputSchema: schema.Obj(),
			},
			Func: d.getTaxonomy,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "get_knowledge_search",
				Description: "Find documentation containing a phrase",
				InputSchema: schema.Obj(schema.Prop{Name: "query", Schema: schema.Str("Case-insensitive phrase"), Required: true}),
			},
			Func: d.search,
		},
	)
}

func (d *Docs) getDocs(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	names, err := args.Strings("documents")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(names) == 0 {
		return jsonvalue.Value{}, tool.InvalidParamsf("argument %q must list at least one document", "documents")
	}
	docs := make([]jsonvalue.Value, 0, len(names))
	for _, name := range names {
		content, err := d.Read(ctx, name)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		docs = append(docs, jsonvalue.ObjectValue(
			jsonvalue.M("path", jsonvalue.StringValue(name)),
			jsonvalue.M("content", jsonvalue.StringValue(content)),
		))
	}
	return jsonvalue.ArrayValue(docs...), nil
}

func (d *Docs) getTaxonomy(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	categories, err := d.Taxonomy(ctx)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	out := make([]jsonvalue.Value, 0, len(categories))
	for _, c := range categories {
		docs := make([]jsonvalue.Value, 0, len(c.Documents))
		for _, e := range c.Documents {
			docs = append(docs, jsonvalue.ObjectValue(
				jsonvalue.M("path", jsonvalue.StringValue(e.Path)),
				jsonvalue.M("title", jsonvalue.StringValue(e.Title)),
			))
		}
		out = append(out, jsonvalue.ObjectValue(
			jsonvalue.M("category", jsonvalue.StringValue(c.Name)),
			jsonvalue.M("documents", jsonvalue.ArrayValue(docs...)),
		))
	}
	return jsonvalue.ObjectValue(jsonvalue.M("categories", jsonvalue.ArrayValue(out...))), nil
}

func (d *Docs) search(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	query, err := args.String("query")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	needle := strings.ToLower(query)

	categories, err := d.Taxonomy(ctx)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var hits []jsonvalue.Value
	for _, c := range categories {
		for _, e := range c.Documents {
			content, err := d.Read(ctx, e.Path)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			var lines []jsonvalue.Value
			for line := range strings.Lines(content) {
				if strings.Contains(strings.ToLower(line), needle) {
					lines = append(lines, jsonvalue.StringValue(strings.TrimSpace(line)))
					if len(lines) == maxMatches {
						break
					}
				}
			}
			if len(lines) > 0 {
				hits = append(hits, jsonvalue.ObjectValue(
					jsonvalue.M("path", jsonvalue.StringValue(e.Path)),
					jsonvalue.M("title", jsonvalue.StringValue(e.Title)),
					jsonvalue.M("matches", jsonvalue.ArrayValue(lines...)),
				))
			}
		}
	}
	return jsonvalue.ArrayValue(hits...), nil
}

// Resources returns the fixed knowledge resources.
func (d *Docs) Resources() []mcp.ResourceDefinition {
	return []mcp.ResourceDefinition{{
		URI:         taxonomyURI,
		Name:        "Algorand knowledge taxonomy",
		Description: "Index of the available Algorand documentation",
		MimeType:    markdownMIME,
	}}
}

// Templates returns the parameterized knowledge resources.
func (d *Docs) Templates() []mcp.ResourceTemplate {
	return []mcp.ResourceTemplate{{
		URITemplate: URIPrefix + "{category}/{document}",
		Name:        "Algorand knowledge document",
		Description: "A documentation page, addressed by its taxonomy path",
		MimeType:    markdownMIME,
	}}
}

// ReadResource serves algorand://knowledge/taxonomy and the documents below
// algorand://knowledge/.
func (d *Docs) ReadResource(ctx context.Context, uri string) (mcp.ReadResourceResult, error) {
	name, ok := strings.CutPrefix(uri, URIPrefix)
	if !ok {
		return mcp.ReadResourceResult{}, tool.InvalidParamsf("unknown knowledge resource %q", uri)
	}

	var text string
	if uri == taxonomyURI {
		categories, err := d.Taxonomy(ctx)
		if err != nil {
			return mcp.ReadResourceResult{}, err
		}
		var b strings.Builder
		b.WriteString("# Algorand knowledge\n")
		for _, c := range categories {
			fmt.Fprintf(&b, "\n## %s\n\n", c.Name)
			for _, e := range c.Documents {
				fmt.Fprintf(&b, "- [%s](%s%s)\n", e.Title, URIPrefix, e.Path)
			}
		}
		text = b.String()
	} else {
		content, err := d.Read(ctx, name)
		if err != nil {
			return mcp.ReadResourceResult{}, err
		}
		text = content
	}
	return mcp.ReadResourceResult{Contents: []mcp.ResourceContents{{URI: uri, MimeType: markdownMIME, Text: text}}}, nil
}
