package rpc

// Explorer API paths.
const (
	accountPath     = "/get_account"
	accountNamePath = "/get_account_name"
	workersPath     = "/get_workers"
	headerPath      = "/header"
)
