package api

import "net/url"

func algodProvider() *Provider {
	ids := map[string]ParamType{"appId": IntParam, "assetId": IntParam, "round": IntParam}
	maxResults := Param{Name: "max", Type: IntParam, Description: "Maximum number of results"}
	return &Provider{
		Name:      "algod",
		Service:   "algod",
		QueryName: kebab,
		Endpoints: []Endpoint{
			{
				Name:        "api_algod_get_account_info",
				Description: "Get an account's balance, assets and applications from algod",
				Path:        "/v2/accounts/{address}",
				Query:       []Param{{Name: "exclude", Description: "Exclude created and held resources: all or none"}},
			},
			{
				Name:        "api_algod_get_account_application_info",
				Description: "Get an account's local state and created params for an application",
				Path:        "/v2/accounts/{address}/applications/{appId}",
				PathTypes:   ids,
			},
			{
				Name:        "api_algod_get_account_asset_info",
				Description: "Get an account's holding and created params for an asset",
				Path:        "/v2/accounts/{address}/assets/{assetId}",
				PathTypes:   ids,
			},
			{
				Name:        "api_algod_get_application_by_id",
				Description: "Get an application's params and global state",
				Path:        "/v2/applications/{appId}",
				PathTypes:   ids,
			},
			{
				Name:        "api_algod_get_application_box",
				Description: "Get one application box by name",
				Path:        "/v2/applications/{appId}/box",
				PathTypes:   ids,
				Query:       []Param{{Name: "name", Description: "Box name with encoding prefix, e.g. b64:AAAA or str:name", Required: true}},
			},
			{
				Name:        "api_algod_get_application_boxes",
				Description: "List an application's box names",
				Path:        "/v2/applications/{appId}/boxes",
				PathTypes:   ids,
				Query:       []Param{maxResults},
			},
			{
				Name:        "api_algod_get_asset_by_id",
				Description: "Get an asset's params",
				Path:        "/v2/assets/{assetId}",
				PathTypes:   ids,
			},
			{
				Name:        "api_algod_get_pending_transaction",
				Description: "Get a pending transaction by id",
				Path:        "/v2/transactions/pending/{txId}",
				Fixed:       url.Values{"format": {"json"}},
			},
			{
				Name:        "api_algod_get_pending_transactions",
				Description: "List transactions in the pool",
				Path:        "/v2/transactions/pending",
				Query:       []Param{maxResults},
				Fixed:       url.Values{"format": {"json"}},
			},
			{
				Name:        "api_algod_get_pending_transactions_by_address",
				Description: "List an account's pending transactions",
				Path:        "/v2/accounts/{address}/transactions/pending",
				Query:       []Param{maxResults},
				Fixed:       url.Values{"format": {"json"}},
			},
			{
				Name:        "api_algod_get_transaction_params",
				Description: "Get suggested transaction parameters",
				Path:        "/v2/transactions/params",
			},
			{
				Name:        "api_algod_get_node_status",
				Description: "Get the node's current status",
				Path:        "/v2/status",
			},
			{
				Name:        "api_algod_get_node_status_after_block",
				Description: "Wait for a block after the given round and return the node status",
				Path:        "/v2/status/wait-for-block-after/{round}",
				PathTypes:   ids,
			},
			{
				Name:        "api_algod_get_block",
				Description: "Get a block by round",
				Path:        "/v2/blocks/{round}",
				PathTypes:   ids,
				Fixed:       url.Values{"format": {"json"}},
			},
			{
				Name:        "api_algod_get_ledger_supply",
				Description: "Get the current supply of Algos",
				Path:        "/v2/ledger/supply",
			},
			{
				Name:        "api_algod_get_genesis",
				Description: "Get the network's genesis file",
				Path:        "/genesis",
			},
			{
				Name:        "api_algod_get_versions",
				Description: "Get the node's software and API versions",
				Path:        "/versions",
			},
		},
	}
}
