package main

import (
	"context"

	"github.com/faithchat/relay/internal/client/cli"
	"github.com/faithchat/relay/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
