package utils

import "time"

// AuthCachePrefix is the prefix used for Redis verified-token cache keys.
const AuthCachePrefix = "auth:"

// AuthUserPrefix indexes cached token hashes by identity id so sign-out can drop them.
const AuthUserPrefix = "authUser:"

// AuthCacheTTL caps the lifetime of a verified-token cache entry.
const AuthCacheTTL = time.Hour

// AdminTokenTTL is the lifetime of an admin console token.
const AdminTokenTTL = 12 * time.Hour
