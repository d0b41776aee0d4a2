package constants

// Route constants shared by the router and the code that builds links.
const (
	RouteHealth       = "/healthz"
	RouteClerkWebhook = "/api/webhooks/clerk"
	RouteVerifyEmail  = "/api/auth/verify-email"
	// DefaultSignInPath is used when SIGN_IN_URL is empty.
	DefaultSignInPath = "/sign-in"
)
