package redis

import (
	"fmt"
	"strings"
)

// Key prefix for all syslvl data
const keyPrefix = "syslvl"

// userDataKey returns the Redis key for a user's sync payload
func userDataKey(userID string) string {
	return fmt.Sprintf("%s:userdata:%s", keyPrefix, userID)
}

// accountKey returns the Redis key for an Account
func accountKey(userID string) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, userID)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, strings.ToLower(email))
}
