package main

import (
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/cli"
)

func main() {
	if cli.Execute(buildInfoString()) != nil {
		os.Exit(1)
	}
}

func buildInfoString() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var rev, ts, modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				rev = setting.Value
			case "vcs.time":
				ts = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if rev != "" {
			short := rev
			if len(short) > 7 {
				short = short[:7]
			}
			stamp := short
			if ts != "" {
				if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
					stamp = stamp + " " + parsed.Format("2006-01-02 15:04")
				}
			}
			if modified == "true" {
				stamp = stamp + "*"
			}
			return "build " + strings.TrimSpace(stamp)
		}
	}
	return ""
}
