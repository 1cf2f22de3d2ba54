// Package uri generates ARC-26 algorand:// payment URIs and their QR codes.
package uri

import (
	"context"
	"encoding/base64"
	"net/url"
	"strconv"

	"github.com/skip2/go-qrcode"

	"github.com/bpowers/algorand-mcp/handlers/internal/txnutil"
	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
)

const qrSize = 256

// Tools returns the URI tools.
func Tools() *tool.Set {
	return tool.MustSet(tool.Tool{
		Definition: tool.Definition{
			Name:        "generate_algorand_uri",
			Description: "Generate an ARC-26 algorand:// URI for an account, payment or asset transfer, with a PNG QR code",
			InputSchema: schema.Obj(
				schema.Prop{Name: "address", Schema: schema.Str("Receiver address"), Required: true},
				schema.Prop{Name: "label", Schema: schema.Str("Label for the receiver")},
				schema.Prop{Name: "amount", Schema: schema.Int("Amount in microAlgos, or base units when asset is set")},
				schema.Prop{Name: "asset", Schema: schema.Int("Asset id to transfer")},
				schema.Prop{Name: "note", Schema: schema.Str("Note the sender may edit")},
				schema.Prop{Name: "xnote", Schema: schema.Str("Note the sender may not edit")},
				schema.Prop{Name: "includeQRCode", Schema: schema.Bool("Include a PNG QR code, default true")},
			),
		},
		Func: generate,
	})
}

// Build returns the ARC-26 URI for args.
func Build(args tool.Args) (string, error) {
	addr, err := txnutil.Address(args, "address")
	if err != nil {
		return "", err
	}
	q := url.Values{}
	for _, key := range []string{"label", "note", "xnote"} {
		s, err := args.OptString(key, "")
		if err != nil {
			return "", err
		}
		if s != "" {
			q.Set(key, s)
		}
	}
	if args.Has("note") && args.Has("xnote") {
		return "", tool.InvalidParamsf("note and xnote are mutually exclusive")
	}
	for _, key := range []string{"amount", "asset"} {
		if !args.Has(key) {
			continue
		}
		n, err := args.Uint64(key)
		if err != nil {
			return "", err
		}
		q.Set(key, strconv.FormatUint(n, 10))
	}

	u := url.URL{Scheme: "algorand", Opaque: "//" + addr, RawQuery: q.Encode()}
	return u.String(), nil
}

func generate(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	uri, err := Build(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	withQR, err := args.Bool("includeQRCode", true)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	members := []jsonvalue.Member{jsonvalue.M("uri", jsonvalue.StringValue(uri))}
	if withQR {
		png, err := qrcode.Encode(uri, qrcode.Medium, qrSize)
		if err != nil {
			return jsonvalue.Value{}, tool.Upstream(err, "encode qr code")
		}
		members = append(members, jsonvalue.M("qrCode", jsonvalue.StringValue("data:image/png;base64,"+base64.StdEncoding.EncodeToString(png))))
	}
	return jsonvalue.ObjectValue(members...), nil
}
