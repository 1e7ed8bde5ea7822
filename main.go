package main

import (
	"context"
	"fmt"
	"os"

	"hangeul/config"
	"hangeul/di"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (optional)")
	pflag.Parse()

	application, cleanup, err := di.InitApp(config.Path(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		cleanup()
		os.Exit(1)
	}
}
