package main

import (
	"fmt"
	"os"

	"github.com/guildlabs/guild-gateway/config"
)

func main() {
	var conf Config
	parser, err := config.Generate(&conf)
	if err != nil {
		fmt.Println("failed to generate configuration parser ", err.Error())
		os.Exit(1)
	}

	if err := parser.Parse(); err != nil {
		fmt.Println("ERROR: ", err.Error())
		_ = parser.Usage()
		os.Exit(1)
	}

	if err := runExecute(conf); err != nil {
		fmt.Println("ERROR: ", err.Error())
		os.Exit(1)
	}
}
