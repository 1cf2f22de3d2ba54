package api

func vestigeProvider() *Provider {
	var (
		network = Param{Name: "networkId", Type: IntParam, Description: "Vestige network id, 0 for mainnet", Required: true}
		limit   = Param{Name: "limit", Type: IntParam, Description: "Maximum number of results"}
		offset  = Param{Name: "offset", Type: IntParam, Description: "Number of results to skip"}
		denom   = Param{Name: "denominatingAssetId", Type: IntParam, Description: "Asset prices are quoted in, 0 for Algo"}
	)
	return &Provider{
		Name:      "vestige",
		Service:   "vestige",
		QueryName: snake,
		Endpoints: []Endpoint{
			{
				Name:        "api_vestige_view_networks",
				Description: "List networks tracked by Vestige",
				Path:        "/networks",
			},
			{
				Name:        "api_vestige_view_protocols",
				Description: "List DeFi protocols tracked by Vestige",
				Path:        "/protocols",
				Query:       []Param{network},
			},
			{
				Name:        "api_vestige_view_assets",
				Description: "List assets with market data",
				Path:        "/assets/list",
				Query: []Param{network, limit, offset, denom,
					{Name: "assetIds", Type: IntListParam, Description: "Only include these assets"},
					{Name: "orderBy", Description: "Column to sort by, e.g. market_cap"},
					{Name: "orderDir", Description: "asc or desc"},
				},
			},
			{
				Name:        "api_vestige_view_asset_price",
				Description: "Get current prices for assets",
				Path:        "/assets/price",
				Query: []Param{network, denom,
					{Name: "assetIds", Type: IntListParam, Description: "Assets to price", Required: true},
				},
			},
			{
				Name:        "api_vestige_view_asset_candles",
				Description: "Get OHLC candles for an asset",
				Path:        "/assets/{assetId}/candles",
				PathTypes:   map[string]ParamType{"assetId": IntParam},
				Query: []Param{network, denom,
					{Name: "interval", Type: IntParam, Description: "Candle width in seconds", Required: true},
					{Name: "start", Type: IntParam, Description: "Unix start time", Required: true},
					{Name: "end", Type: IntParam, Description: "Unix end time"},
				},
			},
			{
				Name:        "api_vestige_view_pools",
				Description: "List liquidity pools",
				Path:        "/pools",
				Query: []Param{network, limit, offset,
					{Name: "protocolId", Type: IntParam, Description: "Only include pools of this protocol"},
					{Name: "asset1Id", Type: IntParam, Description: "First asset of the pair"},
					{Name: "asset2Id", Type: IntParam, Description: "Second asset of the pair"},
				},
			},
			{
				Name:        "api_vestige_view_swaps",
				Description: "List recent swaps",
				Path:        "/swaps",
				Query: []Param{network, limit, offset,
					{Name: "assetId", Type: IntParam, Description: "Only include swaps of this asset"},
					{Name: "address", Description: "Only include swaps by this address"},
					{Name: "start", Type: IntParam, Description: "Unix start time"},
					{Name: "end", Type: IntParam, Description: "Unix end time"},
				},
			},
		},
	}
}

func tinymanProvider() *Provider {
	ids := map[string]ParamType{"assetId": IntParam}
	return &Provider{
		Name:      "tinyman",
		Service:   "tinyman",
		QueryName: snake,
		Endpoints: []Endpoint{
			{
				Name:        "api_tinyman_get_pools",
				Description: "List Tinyman pools",
				Path:        "/pools/",
				Query: []Param{
					{Name: "limit", Type: IntParam, Description: "Maximum number of results"},
					{Name: "offset", Type: IntParam, Description: "Number of results to skip"},
					{Name: "verifiedOnly", Type: BoolParam, Description: "Only include pools of verified assets"},
					{Name: "withStatistics", Type: BoolParam, Description: "Include volume and liquidity statistics"},
					{Name: "ordering", Description: "Sort order, e.g. -liquidity"},
					{Name: "asset1Id", Type: IntParam, Description: "First asset of the pair"},
					{Name: "asset2Id", Type: IntParam, Description: "Second asset of the pair"},
				},
			},
			{
				Name:        "api_tinyman_get_pool",
				Description: "Get a Tinyman pool by address",
				Path:        "/pools/{poolAddress}/",
			},
			{
				Name:        "api_tinyman_get_asset",
				Description: "Get Tinyman's view of an asset",
				Path:        "/assets/{assetId}/",
				PathTypes:   ids,
			},
			{
				Name:        "api_tinyman_get_asset_prices",
				Description: "Get current asset prices in USD",
				Path:        "/current-asset-prices/",
			},
		},
	}
}

func ultradeProvider() *Provider {
	symbol := Param{Name: "symbol", Description: "Market symbol, e.g. algo_usdc", Required: true}
	return &Provider{
		Name:    "ultrade",
		Service: "ultrade",
		Endpoints: []Endpoint{
			{
				Name:        "api_ultrade_get_markets",
				Description: "List Ultrade markets",
				Path:        "/market/markets",
			},
			{
				Name:        "api_ultrade_get_symbols",
				Description: "List market symbols",
				Path:        "/market/symbols",
				Query:       []Param{{Name: "mask", Description: "Symbol filter, e.g. algo"}},
			},
			{
				Name:        "api_ultrade_get_price",
				Description: "Get a market's last price",
				Path:        "/market/price",
				Query:       []Param{symbol},
			},
			{
				Name:        "api_ultrade_get_depth",
				Description: "Get a market's order book",
				Path:        "/market/depth",
				Query:       []Param{symbol, {Name: "depth", Type: IntParam, Description: "Number of levels"}},
			},
			{
				Name:        "api_ultrade_get_last_trades",
				Description: "List a market's latest trades",
				Path:        "/market/last-trades",
				Query:       []Param{symbol},
			},
			{
				Name:        "api_ultrade_get_history",
				Description: "Get a market's OHLC history",
				Path:        "/market/history",
				Query: []Param{symbol,
					{Name: "interval", Description: "Candle width, e.g. 1m or 1h", Required: true},
					{Name: "startTime", Type: IntParam, Description: "Unix start time in milliseconds"},
					{Name: "endTime", Type: IntParam, Description: "Unix end time in milliseconds"},
					{Name: "limit", Type: IntParam, Description: "Maximum number of candles"},
				},
			},
		},
	}
}
