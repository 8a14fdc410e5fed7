package contextkeys

type contextKey string

const (
	UserIDKey    contextKey = "UserID"
	BranchIDKey  contextKey = "BranchID"
	RoleIDsKey   contextKey = "RoleIDs"
	RequestIDKey contextKey = "RequestID"
)
