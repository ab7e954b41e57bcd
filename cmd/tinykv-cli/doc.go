// Package main provides the entry point for tinykv-cli.
//
// tinykv-cli talks to a tinykv server (or any Redis-compatible server)
// over RESP. It runs one command and exits, or enters interactive mode
// when started without a command:
//
//	tinykv-cli -s 127.0.0.1:6379 set --px 500 greeting hello
//	tinykv-cli get greeting
//	tinykv-cli
package main
