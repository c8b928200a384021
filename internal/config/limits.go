package config

const (
	// MinDocumentTitleLength and MaxDocumentTitleLength bound document titles
	// (counted in characters, not bytes).
	MinDocumentTitleLength = 3
	MaxDocumentTitleLength = 100

	// MaxDocumentContentBytes caps a single save. LaTeX sources are small;
	// anything larger is almost certainly a mistake.
	MaxDocumentContentBytes = 5 << 20

	// MinPasswordLength matches the identity service policy
	MinPasswordLength = 8

	// MaxLinkExpiryDays is the longest expiry an anonymous link may be given.
	// Links without an expiry never expire.
	MaxLinkExpiryDays = 365
)
