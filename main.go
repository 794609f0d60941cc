// Package main deploys a git working tree to an FTP host from CI and reports
// the outcome to a Slack webhook.
package main

import "github.com/apiarycd/ftpdeploy/internal"

func main() {
	internal.Run()
}
