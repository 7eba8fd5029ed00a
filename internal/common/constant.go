package common

// AuthorizationHeaderName is the HTTP header that carries the identity token.
const AuthorizationHeaderName = "Authorization"

const (
	// DefaultRole is assigned to every registered user.
	DefaultRole = "role_user"
	// DefaultImage is the avatar reference of users who never uploaded one.
	DefaultImage = "default.png"
)
