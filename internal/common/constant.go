package common

// AuthorizationHeader carries the access token as "Bearer <token>".
const AuthorizationHeader = "Authorization"

// BearerPrefix precedes the token in AuthorizationHeader.
const BearerPrefix = "Bearer "
