package auth

// Mirror keys. The role/email mirrors exist for synchronous access outside
// the reactive state; they are hints, never the authority.
const (
	KeyUserType  = "userType"
	KeyUserEmail = "userEmail"
)

// KeyValue is the local persistent key-value store the manager mirrors
// role/email into.
type KeyValue interface {
	Set(key, value string)
	Get(key string) (string, bool)
	Delete(key string)
}
