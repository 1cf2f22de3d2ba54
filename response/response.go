// Package response normalizes raw tool results into the paginated
// {data, metadata} envelope returned to MCP clients.
package response

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/mcp"
	"github.com/bpowers/algorand-mcp/tool"
)

// DefaultItemsPerPage is used when the caller does not ask for a page size.
const DefaultItemsPerPage = 10

const tokenPrefix = "page_"

// Metadata describes the page of the paginated field returned in an Envelope.
type Metadata struct {
	TotalItems   int
	ItemsPerPage int
	CurrentPage  int
	TotalPages   int
	HasNextPage  bool
	PageToken    string
	ArrayField   string
}

func (m Metadata) value() jsonvalue.Value {
	members := []jsonvalue.Member{
		jsonvalue.M("totalItems", jsonvalue.Int(int64(m.TotalItems))),
		jsonvalue.M("itemsPerPage", jsonvalue.Int(int64(m.ItemsPerPage))),
		jsonvalue.M("currentPage", jsonvalue.Int(int64(m.CurrentPage))),
		jsonvalue.M("totalPages", jsonvalue.Int(int64(m.TotalPages))),
		jsonvalue.M("hasNextPage", jsonvalue.BoolValue(m.HasNextPage)),
	}
	if m.PageToken != "" {
		members = append(members, jsonvalue.M("pageToken", jsonvalue.StringValue(m.PageToken)))
	}
	if m.ArrayField != "" {
		members = append(members, jsonvalue.M("arrayField", jsonvalue.StringValue(m.ArrayField)))
	}
	return jsonvalue.ObjectValue(members...)
}

// Envelope is the normalized shape of every tool result. Metadata is nil
// when nothing was paginated.
type Envelope struct {
	Data     jsonvalue.Value
	Metadata *Metadata
}

// Value renders the envelope as {data, metadata?}.
func (e Envelope) Value() jsonvalue.Value {
	members := []jsonvalue.Member{jsonvalue.M("data", e.Data)}
	if e.Metadata != nil {
		members = append(members, jsonvalue.M("metadata", e.Metadata.value()))
	}
	return jsonvalue.ObjectValue(members...)
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return jsonvalue.Marshal(e.Value())
}

// Process paginates the large collection in v. Arrays are always sliced;
// in objects the first oversized array or object field, in key order, is
// paginated and named in metadata.arrayField while later oversized fields
// are returned whole. Nested objects are processed recursively and only
// their data is kept. Scalars and null pass through.
func Process(v jsonvalue.Value, pageToken string, itemsPerPage int) (Envelope, error) {
	if itemsPerPage <= 0 {
		return Envelope{}, tool.InvalidParamsf("itemsPerPage must be positive, got %d", itemsPerPage)
	}
	page := DecodePageToken(pageToken)

	switch v.Kind() {
	case jsonvalue.Array:
		elems, meta := paginate(v.Elems(), page, itemsPerPage)
		return Envelope{Data: jsonvalue.ArrayValue(elems...), Metadata: &meta}, nil
	case jsonvalue.Object:
		return processObject(v, page, itemsPerPage), nil
	default:
		return Envelope{Data: v}, nil
	}
}

func processObject(v jsonvalue.Value, page, itemsPerPage int) Envelope {
	var meta *Metadata
	members := v.Members()
	out := make([]jsonvalue.Member, 0, len(members))

	for _, m := range members {
		field := m.Value
		switch field.Kind() {
		case jsonvalue.Array:
			if meta == nil && field.Len() > itemsPerPage {
				elems, pm := paginate(field.Elems(), page, itemsPerPage)
				pm.ArrayField = m.Key
				meta = &pm
				field = jsonvalue.ArrayValue(elems...)
			}
		case jsonvalue.Object:
			if field.Len() > itemsPerPage {
				if meta == nil {
					entries, pm := paginate(field.Members(), page, itemsPerPage)
					pm.ArrayField = m.Key
					meta = &pm
					field = jsonvalue.ObjectValue(entries...)
				}
			} else {
				field = processObject(field, page, itemsPerPage).Data
			}
		}
		out = append(out, jsonvalue.M(m.Key, field))
	}

	return Envelope{Data: jsonvalue.ObjectValue(out...), Metadata: meta}
}

// paginate returns the requested 1-based page of items. Pages past the end
// are empty.
func paginate[T any](items []T, page, itemsPerPage int) ([]T, Metadata) {
	n := len(items)
	// No n+itemsPerPage-1 here: itemsPerPage comes from the caller and may be
	// close to math.MaxInt.
	totalPages := n / itemsPerPage
	if n%itemsPerPage != 0 {
		totalPages++
	}

	start, end := n, n
	if page-1 < totalPages {
		start = (page - 1) * itemsPerPage
		end = min(start+itemsPerPage, n)
	}

	meta := Metadata{
		TotalItems:   n,
		ItemsPerPage: itemsPerPage,
		CurrentPage:  page,
		TotalPages:   totalPages,
		HasNextPage:  end < n,
	}
	if meta.HasNextPage {
		meta.PageToken = GenerateNextPageToken(page)
	}
	return items[start:end], meta
}

// GenerateNextPageToken returns the opaque token for the page after page.
func GenerateNextPageToken(page int) string {
	return base64.StdEncoding.EncodeToString([]byte(tokenPrefix + strconv.Itoa(page+1)))
}

// DecodePageToken returns the page a token refers to. Empty, corrupt or
// out-of-range tokens yield page 1.
func DecodePageToken(token string) int {
	if token == "" {
		return 1
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 1
	}
	digits, ok := strings.CutPrefix(string(raw), tokenPrefix)
	if !ok {
		return 1
	}
	page, err := strconv.Atoi(digits)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ResourceHandler reads a resource by URI.
type ResourceHandler func(ctx context.Context, uri string) (mcp.ReadResourceResult, error)

// WrapResourceHandler returns h unchanged. Resource handlers pass through it
// so every category composes the same way.
func WrapResourceHandler(h ResourceHandler) ResourceHandler {
	return h
}

// ToolResult renders env in the MCP tool-call wire form: a single text block
// holding the JSON envelope.
func ToolResult(env Envelope) (mcp.CallToolResult, error) {
	text, err := jsonvalue.Marshal(env.Value())
	if err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("encode envelope: %w", err)
	}
	return mcp.CallToolResult{
		Content: []mcp.ContentBlock{{Type: "text", Text: string(text)}},
	}, nil
}
