package redis

// Redis key naming conventions for chrona data.
// All keys are prefixed with "chrona:" to avoid collisions.

const keyPrefix = "chrona:"

// backfillLockKey returns the advisory lock key for a config:
// chrona:backfill:lock:{configID}
func backfillLockKey(configID string) string {
	return keyPrefix + "backfill:lock:" + configID
}
