package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Token codes
	TokenExpired Code = 200002

	// Reward claim codes
	AlreadyClaimed      Code = 500001
	TransferFailed      Code = 500002
	MintFailed          Code = 500003
	ConfirmationTimeout Code = 500004
	LedgerWriteFailure  Code = 500005
	ClaimInProgress     Code = 500006
)
