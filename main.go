// Package main is the entry point for tvplay.
package main

import (
	"github.com/samber/lo"
	"github.com/tvplay-cli/tvplay/cmd"
	"github.com/tvplay-cli/tvplay/config"
	"github.com/tvplay-cli/tvplay/internal/cache"
	"github.com/tvplay-cli/tvplay/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()

	cmd.Execute()
}
