// Package constants defines shared domain-level constant values.
package constants

// Pub/Sub provider names selectable via configuration.
const (
	// PubSubProviderGoogle selects the Google Cloud Pub/Sub publisher.
	PubSubProviderGoogle = "google"
	// PubSubProviderLocal selects the local HTTP push publisher for development.
	PubSubProviderLocal = "local"
)

// AuthProviderEmail is the email/password authentication provider name.
const AuthProviderEmail = "email"
