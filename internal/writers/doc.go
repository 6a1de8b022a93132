// Package writers owns serialized outputs. Each writer runs in its own
// goroutine fed through a channel; the caller closes the channel and then
// waits on the error channel.
package writers
