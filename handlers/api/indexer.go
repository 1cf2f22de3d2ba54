package api

import "github.com/bpowers/algorand-mcp/router"

// indexerTable sends the transaction-history endpoints to their own groups
// ahead of the generic account and asset lookups that share their prefix.
var indexerTable = router.Table{
	{Match: router.Exact("api_indexer_lookup_account_transactions"), Category: "account_transactions"},
	{Match: router.Prefix("api_indexer_lookup_account_"), Category: "accounts"},
	{Match: router.Exact("api_indexer_lookup_asset_transactions"), Category: "asset_transactions"},
	{Match: router.Prefix("api_indexer_lookup_asset_"), Category: "assets"},
	{Match: router.Prefix("api_indexer_lookup_application"), Category: "applications"},
	{Match: router.Prefix("api_indexer_search_for_"), Category: "search"},
	{Match: router.Prefix("api_indexer_"), Category: "lookup"},
}

func indexerProvider() *Provider {
	ids := map[string]ParamType{"appId": IntParam, "assetId": IntParam, "round": IntParam}
	var (
		limit      = Param{Name: "limit", Type: IntParam, Description: "Maximum number of results"}
		nextToken  = Param{Name: "nextToken", Description: "Token from a previous response's next-token"}
		includeAll = Param{Name: "includeAll", Type: BoolParam, Description: "Include deleted and closed-out entries"}
		minRound   = Param{Name: "minRound", Type: IntParam, Description: "Only include results at or after this round"}
		maxRound   = Param{Name: "maxRound", Type: IntParam, Description: "Only include results at or before this round"}
		afterTime  = Param{Name: "afterTime", Description: "RFC 3339 lower time bound"}
		beforeTime = Param{Name: "beforeTime", Description: "RFC 3339 upper time bound"}
		txType     = Param{Name: "txType", Description: "Transaction type: pay, keyreg, acfg, axfer, afrz, appl or stpf"}
		notePrefix = Param{Name: "notePrefix", Description: "Base64 note prefix"}
		greater    = Param{Name: "currencyGreaterThan", Type: IntParam, Description: "Only include amounts above this"}
		less       = Param{Name: "currencyLessThan", Type: IntParam, Description: "Only include amounts below this"}
		round      = Param{Name: "round", Type: IntParam, Description: "Report state as of this round"}
		exclude    = Param{Name: "exclude", Description: "Comma-separated resources to exclude: all, assets, created-assets, apps-local-state, created-apps, none"}
		assetID    = Param{Name: "assetId", Type: IntParam, Description: "Asset id"}
		appID      = Param{Name: "applicationId", Type: IntParam, Description: "Application id"}
		creator    = Param{Name: "creator", Description: "Creator address"}
	)
	txnFilters := []Param{limit, nextToken, minRound, maxRound, afterTime, beforeTime, txType, notePrefix, greater, less}

	return &Provider{
		Name:      "indexer",
		Service:   "indexer",
		QueryName: kebab,
		Table:     indexerTable,
		Endpoints: []Endpoint{
			{
				Name:        "api_indexer_lookup_account_transactions",
				Description: "List an account's transaction history",
				Path:        "/v2/accounts/{address}/transactions",
				Query:       append([]Param{assetID, {Name: "rekeyTo", Type: BoolParam, Description: "Only include rekey transactions"}}, txnFilters...),
				Group:       "account_transactions",
			},
			{
				Name:        "api_indexer_lookup_account_by_id",
				Description: "Get an account from the indexer",
				Path:        "/v2/accounts/{address}",
				Query:       []Param{round, includeAll, exclude},
				Group:       "accounts",
			},
			{
				Name:        "api_indexer_lookup_account_assets",
				Description: "List an account's asset holdings",
				Path:        "/v2/accounts/{address}/assets",
				Query:       []Param{assetID, includeAll, limit, nextToken},
				Group:       "accounts",
			},
			{
				Name:        "api_indexer_lookup_account_app_local_states",
				Description: "List an account's application local states",
				Path:        "/v2/accounts/{address}/apps-local-state",
				Query:       []Param{appID, includeAll, limit, nextToken},
				Group:       "accounts",
			},
			{
				Name:        "api_indexer_lookup_account_created_applications",
				Description: "List applications created by an account",
				Path:        "/v2/accounts/{address}/created-applications",
				Query:       []Param{appID, includeAll, limit, nextToken},
				Group:       "accounts",
			},
			{
				Name:        "api_indexer_lookup_account_created_assets",
				Description: "List assets created by an account",
				Path:        "/v2/accounts/{address}/created-assets",
				Query:       []Param{assetID, includeAll, limit, nextToken},
				Group:       "accounts",
			},
			{
				Name:        "api_indexer_lookup_asset_transactions",
				Description: "List an asset's transfer history",
				Path:        "/v2/assets/{assetId}/transactions",
				PathTypes:   ids,
				Query: append([]Param{
					{Name: "address", Description: "Only include transactions involving this address"},
					{Name: "addressRole", Description: "Role of address: sender, receiver or freeze-target"},
					{Name: "excludeCloseTo", Type: BoolParam, Description: "Ignore close-to fields when filtering by address"},
				}, txnFilters...),
				Group: "asset_transactions",
			},
			{
				Name:        "api_indexer_lookup_asset_by_id",
				Description: "Get an asset from the indexer",
				Path:        "/v2/assets/{assetId}",
				PathTypes:   ids,
				Query:       []Param{includeAll},
				Group:       "assets",
			},
			{
				Name:        "api_indexer_lookup_asset_balances",
				Description: "List the accounts holding an asset",
				Path:        "/v2/assets/{assetId}/balances",
				PathTypes:   ids,
				Query:       []Param{includeAll, limit, nextToken, greater, less},
				Group:       "assets",
			},
			{
				Name:        "api_indexer_lookup_applications",
				Description: "Get an application from the indexer",
				Path:        "/v2/applications/{appId}",
				PathTypes:   ids,
				Query:       []Param{includeAll},
				Group:       "applications",
			},
			{
				Name:        "api_indexer_lookup_application_logs",
				Description: "List log messages emitted by an application",
				Path:        "/v2/applications/{appId}/logs",
				PathTypes:   ids,
				Query: []Param{
					limit, nextToken, minRound, maxRound,
					{Name: "txid", Description: "Only include logs from this transaction"},
					{Name: "senderAddress", Description: "Only include logs from transactions sent by this address"},
				},
				Group: "applications",
			},
			{
				Name:        "api_indexer_lookup_application_boxes",
				Description: "List an application's box names",
				Path:        "/v2/applications/{appId}/boxes",
				PathTypes:   ids,
				Query:       []Param{limit, nextToken},
				Group:       "applications",
			},
			{
				Name:        "api_indexer_lookup_application_box",
				Description: "Get one application box by name",
				Path:        "/v2/applications/{appId}/box",
				PathTypes:   ids,
				Query:       []Param{{Name: "name", Description: "Box name with encoding prefix, e.g. b64:AAAA", Required: true}},
				Group:       "applications",
			},
			{
				Name:        "api_indexer_search_for_accounts",
				Description: "Search accounts by holdings, balance or auth address",
				Path:        "/v2/accounts",
				Query:       []Param{assetID, appID, greater, less, limit, nextToken, round, includeAll, exclude, {Name: "authAddr", Description: "Only include accounts rekeyed to this address"}},
				Group:       "search",
			},
			{
				Name:        "api_indexer_search_for_applications",
				Description: "Search applications",
				Path:        "/v2/applications",
				Query:       []Param{appID, creator, includeAll, limit, nextToken},
				Group:       "search",
			},
			{
				Name:        "api_indexer_search_for_assets",
				Description: "Search assets by id, creator, name or unit",
				Path:        "/v2/assets",
				Query: []Param{
					assetID, creator, includeAll, limit, nextToken,
					{Name: "name", Description: "Asset name"},
					{Name: "unit", Description: "Unit name"},
				},
				Group: "search",
			},
			{
				Name:        "api_indexer_search_for_transactions",
				Description: "Search transactions",
				Path:        "/v2/transactions",
				Query: append([]Param{
					{Name: "address", Description: "Only include transactions involving this address"},
					{Name: "addressRole", Description: "Role of address: sender, receiver or freeze-target"},
					{Name: "txid", Description: "Transaction id"},
					{Name: "sigType", Description: "Signature type: sig, msig or lsig"},
					{Name: "rekeyTo", Type: BoolParam, Description: "Only include rekey transactions"},
					round, assetID, appID,
				}, txnFilters...),
				Group: "search",
			},
			{
				Name:        "api_indexer_lookup_transaction_by_id",
				Description: "Get a transaction by id",
				Path:        "/v2/transactions/{txId}",
				Group:       "lookup",
			},
			{
				Name:        "api_indexer_lookup_block",
				Description: "Get a block by round",
				Path:        "/v2/blocks/{round}",
				PathTypes:   ids,
				Group:       "lookup",
			},
			{
				Name:        "api_indexer_make_health_check",
				Description: "Get the indexer's health and round",
				Path:        "/health",
				Group:       "lookup",
			},
		},
	}
}
