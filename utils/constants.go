// File: utils/constants.go
package utils

// SessionCachePrefix is the prefix used for Redis booking session keys.
const SessionCachePrefix = "bsession:"
