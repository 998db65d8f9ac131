// Package redis wraps go-redis for publishing discovery events over Redis
// pub/sub, with component lifecycle support.
package redis
