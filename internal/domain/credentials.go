package domain

// Credentials holds the secrets resolved for a single invocation.
type Credentials struct {
	EmailAPIKey string
	DBPassword  string
}
