package algorandmcp

import (
	"github.com/bpowers/algorand-mcp/handlers/wallet"
	"github.com/bpowers/algorand-mcp/knowledge"
	"github.com/bpowers/algorand-mcp/router"
)

// Tool categories.
const (
	CategoryWallet    = "wallet"
	CategoryAccounts  = "accounts"
	CategoryUtility   = "utility"
	CategoryAlgod     = "algod"
	CategoryTxn       = "txn"
	CategoryAPI       = "api"
	CategoryURI       = "uri"
	CategoryKnowledge = "knowledge"
)

// Table returns the top-level routing table. The families are disjoint, so
// order only matters where New's validation would flag a shadowed rule.
func Table() router.Table {
	return router.Table{
		{Match: router.Prefix("wallet_"), Category: CategoryWallet},

		{Match: router.Exact("create_account"), Category: CategoryAccounts},
		{Match: router.Exact("rekey_account"), Category: CategoryAccounts},
		{Match: router.Prefix("mnemonic_"), Category: CategoryAccounts},
		{Match: router.Prefix("mdk_"), Category: CategoryAccounts},
		{Match: router.Prefix("seed_"), Category: CategoryAccounts},
		{Match: router.Prefix("secret_key_"), Category: CategoryAccounts},

		{Match: router.Exact("ping"), Category: CategoryUtility},
		{Match: router.Exact("validate_address"), Category: CategoryUtility},
		{Match: router.Exact("encode_address"), Category: CategoryUtility},
		{Match: router.Exact("decode_address"), Category: CategoryUtility},
		{Match: router.Exact("get_application_address"), Category: CategoryUtility},
		{Match: router.Exact("bytes_to_bigint"), Category: CategoryUtility},
		{Match: router.Exact("bigint_to_bytes"), Category: CategoryUtility},
		{Match: router.Exact("encode_uint64"), Category: CategoryUtility},
		{Match: router.Exact("decode_uint64"), Category: CategoryUtility},
		{Match: router.Exact("verify_bytes"), Category: CategoryUtility},
		{Match: router.Exact("sign_bytes"), Category: CategoryUtility},
		{Match: router.Exact("encode_obj"), Category: CategoryUtility},
		{Match: router.Exact("decode_obj"), Category: CategoryUtility},

		{Match: router.Prefix("compile_"), Category: CategoryAlgod},
		{Match: router.Prefix("disassemble_"), Category: CategoryAlgod},
		{Match: router.Prefix("send_raw_"), Category: CategoryAlgod},
		{Match: router.Prefix("simulate_"), Category: CategoryAlgod},

		{Match: router.Prefix("make_"), Category: CategoryTxn},
		{Match: router.Exact("assign_group_id"), Category: CategoryTxn},
		{Match: router.Exact("sign_transaction"), Category: CategoryTxn},

		{Match: router.Prefix("api_"), Category: CategoryAPI},

		{Match: router.Exact("generate_algorand_uri"), Category: CategoryURI},

		{Match: router.Prefix("get_knowledge_"), Category: CategoryKnowledge},
	}
}

// ResourceTable routes resource URIs.
func ResourceTable() router.Table {
	return router.Table{
		{Match: router.Prefix(wallet.URIPrefix), Category: CategoryWallet},
		{Match: router.Prefix(knowledge.URIPrefix), Category: CategoryKnowledge},
	}
}
