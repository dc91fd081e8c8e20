package contextkeys

// Custom key type so values set here cannot collide with other packages.
type contextKey string

// DBContextKey is the key under which the *gorm.DB handle (pool or
// per-request transaction) is stored for handlers to pick up.
const DBContextKey = contextKey("db")
