// Package confloader merges tinykv configuration sources with koanf and
// watches config files with fsnotify.
//
// Sources, lowest priority first:
//
//  1. values already in the target struct (the defaults)
//  2. the YAML config file
//  3. the environment, after .env files are read into it
//  4. overrides, normally command-line flags
//
// Environment variable names are matched against the target's koanf keys,
// so TINYKV_SERVER_REDIS_IDLE_TIMEOUT sets server.redis.idle_timeout.
package confloader
