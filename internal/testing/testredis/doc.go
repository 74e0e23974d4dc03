// Package testredis runs repository tests against a real redis.
//
// Tests are skipped unless TEST_REDIS_ADDR is set. TEST_REDIS_PASSWORD and
// TEST_REDIS_DB (default 15) are optional. Names handed out by Key and Player
// are unique per test and removed on cleanup, so parallel tests can share a
// server.
//
//	func TestRedisSlot(t *testing.T) {
//	    rdb := testredis.New(t)
//	    slot := repository.NewRedisSlot(rdb.Client, rdb.Key("guilds"))
//	    ...
//	}
package testredis
