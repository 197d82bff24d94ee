// Package notify contains the executor observers that report build
// progress: structured logs, a terminal progress bar and a socket.io event
// stream for build dashboards.
package notify
