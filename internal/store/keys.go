package store

const (
	keyUserDoc       = "user:%s:doc"
	keySettings      = "meta:settings"
	keyPublicChat    = "chat:public"
	keyDirectChat    = "chat:%s"
	keyClickCooldown = "cooldown:%s:click"

	userIndexKey = "users:all" // set of registered usernames
)
