package http

const (
	HeaderContentType   = "Content-Type"
	HeaderValueJson     = "application/json"
	HeaderApiKey        = "x-api-key"
	HeaderRequestID     = "X-Request-Id"
	HeaderXForwardedFor = "x-forwarded-for"

	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// API response messages, kept stable because clients match on them.
const (
	MsgProductCreated  = "Product created successfully"
	MsgProductUpdated  = "Product updated successfully"
	MsgProductNotFound = "Product not found"
	MsgUnauthorized    = "Unauthorized - Invalid API key"
	MsgValidationError = "Validation error"
	MsgServerError     = "Internal server error"
	MsgTooManyRequests = "Too many requests"
)
