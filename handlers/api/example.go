package api

import (
	"context"
	"fmt"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
)

const maxExampleItems = 1000

// exampleTools serves canned data so clients can exercise pagination without
// an upstream.
func exampleTools() *tool.Set {
	count := schema.Prop{Name: "count", Schema: schema.Int("Number of items to generate, default 25")}
	return tool.MustSet(
		tool.Tool{
			Definition: tool.Definition{
				Name:        "api_example_list_items",
				Description: "Return a generated list of items; useful for trying pagination",
				InputSchema: schema.Obj(count),
			},
			Func: listItems,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "api_example_get_account_summary",
				Description: "Return a sample account with a large asset list and a small app list",
				InputSchema: schema.Obj(count),
			},
			Func: accountSummary,
		},
	)
}

func exampleCount(args tool.Args) (int, error) {
	n, err := args.OptInt("count", 25)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > maxExampleItems {
		return 0, tool.InvalidParamsf("count must be between 0 and %d", maxExampleItems)
	}
	return n, nil
}

func items(n int) jsonvalue.Value {
	elems := make([]jsonvalue.Value, 0, n)
	for i := range n {
		elems = append(elems, jsonvalue.ObjectValue(
			jsonvalue.M("id", jsonvalue.Int(int64(i+1))),
			jsonvalue.M("name", jsonvalue.StringValue(fmt.Sprintf("item-%d", i+1))),
		))
	}
	return jsonvalue.ArrayValue(elems...)
}

func listItems(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	n, err := exampleCount(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return items(n), nil
}

func accountSummary(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	n, err := exampleCount(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.ObjectValue(
		jsonvalue.M("address", jsonvalue.StringValue("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAY5HFKQ")),
		jsonvalue.M("amount", jsonvalue.Uint(18446744073709551615)),
		jsonvalue.M("assets", items(n)),
		jsonvalue.M("apps-local-state", items(2)),
	), nil
}
