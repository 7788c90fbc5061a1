package common

// AccessTokenHeaderName is the HTTP header that may carry the access token
// when the Authorization header is not used.
const AccessTokenHeaderName = "access_token"

// MaxFileSize caps a single uploaded document.
const MaxFileSize = 25 << 20
