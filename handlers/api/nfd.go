package api

func nfdProvider() *Provider {
	var (
		view   = Param{Name: "view", Description: "Result detail: tiny, thumbnail, brief or full"}
		limit  = Param{Name: "limit", Type: IntParam, Description: "Maximum number of results"}
		offset = Param{Name: "offset", Type: IntParam, Description: "Number of results to skip"}
		sort   = Param{Name: "sort", Description: "Sort order, e.g. createdDesc or timeChangedDesc"}
	)
	filters := []Param{
		{Name: "name", Description: "Exact NFD name"},
		{Name: "category", Type: StringListParam, Description: "Categories: curated, premium, common"},
		{Name: "saleType", Type: StringListParam, Description: "Sale types: auction, buyItNow"},
		{Name: "state", Type: StringListParam, Description: "States: reserved, forSale, owned, expired"},
		{Name: "parentAppID", Type: IntParam, Description: "Parent NFD application id for segments"},
		{Name: "length", Type: StringListParam, Description: "Name lengths, e.g. 1_letters or 10+_letters"},
		{Name: "traits", Type: StringListParam, Description: "Traits: emoji, pristine, segment"},
		{Name: "owner", Description: "Owner address"},
		{Name: "reservedFor", Description: "Address the NFD is reserved for"},
		{Name: "prefix", Description: "Name prefix"},
		{Name: "substring", Description: "Name substring"},
		limit, offset, sort, view,
	}

	return &Provider{
		Name:    "nfd",
		Service: "nfd",
		Endpoints: []Endpoint{
			{
				Name:        "api_nfd_get_nfd",
				Description: "Get an NFD by name or application id",
				Path:        "/nfd/{nameOrID}",
				Query: []Param{view,
					{Name: "poll", Type: BoolParam, Description: "Wait for changes"},
					{Name: "nocache", Type: BoolParam, Description: "Bypass the NFD cache"},
				},
			},
			{
				Name:        "api_nfd_get_nfds_for_addresses",
				Description: "Reverse-lookup the NFDs linked to addresses",
				Path:        "/nfd/lookup",
				Query: []Param{
					{Name: "address", Type: StringListParam, Description: "Addresses to look up", Required: true},
					view,
					{Name: "allowUnverified", Type: BoolParam, Description: "Include unverified links"},
				},
			},
			{
				Name:        "api_nfd_get_nfd_activity",
				Description: "List changes to NFDs",
				Path:        "/nfd/activity",
				Query: []Param{
					{Name: "name", Type: StringListParam, Description: "NFD names", Required: true},
					{Name: "type", Description: "Activity type, e.g. changes"},
					{Name: "afterTime", Description: "RFC 3339 lower time bound"},
					limit, sort,
				},
			},
			{
				Name:        "api_nfd_get_nfd_analytics",
				Description: "Get sales analytics for NFDs",
				Path:        "/nfd/analytics",
				Query: []Param{
					{Name: "name", Description: "NFD name"},
					{Name: "buyer", Description: "Buyer address"},
					{Name: "seller", Description: "Seller address"},
					{Name: "event", Type: StringListParam, Description: "Events, e.g. sold or minted"},
					{Name: "minPrice", Type: IntParam, Description: "Minimum price in microAlgos"},
					{Name: "maxPrice", Type: IntParam, Description: "Maximum price in microAlgos"},
					{Name: "afterTime", Description: "RFC 3339 lower time bound"},
					limit, offset, sort,
				},
			},
			{
				Name:        "api_nfd_browse_nfds",
				Description: "Browse NFDs with filters",
				Path:        "/nfd/browse",
				Query:       filters,
			},
			{
				Name:        "api_nfd_search_nfds",
				Description: "Search NFDs with filters",
				Path:        "/nfd/v2/search",
				Query:       filters,
			},
		},
	}
}
