package domain

// AccessToken is what a successful login hands back.
type AccessToken struct {
	Token     string
	Type      string // always "bearer"
	ExpiresIn int64  // seconds
}

// TOTPEnrollment is returned when a user starts TOTP enrolment.
type TOTPEnrollment struct {
	Secret  string
	URL     string // otpauth:// URI for authenticator apps
	Issuer  string
	Account string
}
