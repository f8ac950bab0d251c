/*
This command provides an executable version of hopstrip with the
default set of filters.

For the list of command line options, run:

	hopstrip -help

For details about the usage, please see the documentation of the root
hopstrip package.
*/
package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/zalando/hopstrip"
	"github.com/zalando/hopstrip/config"
)

var (
	version string
	commit  string
)

func main() {
	cfg := config.NewConfig()
	if err := cfg.Parse(); err != nil {
		log.Fatalf("Error processing config: %s", err)
	}

	if cfg.PrintVersion {
		fmt.Printf("hopstrip version %s (commit: %s)\n", version, commit)
		return
	}

	log.Fatal(hopstrip.Run(cfg.ToOptions()))
}
