package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/guildlabs/guild-gateway/guild"
)

// parseArgs decodes the configured arguments into the values
// passed along with the invocation. 0x prefixed values are sent
// as raw bytes, everything else as a string
func parseArgs(raw []string) ([]interface{}, error) {
	args := make([]interface{}, 0, len(raw))
	for _, v := range raw {
		if strings.HasPrefix(v, "0x") {
			data, err := hex.DecodeString(v[2:])
			if err != nil {
				return nil, fmt.Errorf("failed to decode argument %q as hex %s", v, err.Error())
			}

			args = append(args, data)
			continue
		}

		args = append(args, v)
	}

	return args, nil
}

func runExecute(conf Config) error {
	contract := common.HexToAddress(conf.Invoke.Contract)

	ctx := context.Background()
	engine, err := dialEngine(ctx, conf, guild.TargetRef{
		Contract: &contract,
		Method:   conf.Invoke.Method,
	})
	if err != nil {
		return err
	}

	args, err := parseArgs(conf.Invoke.Args)
	if err != nil {
		return err
	}

	res, derr := engine.Invoke(ctx, guild.Request{
		Args: args,
		Overrides: guild.Overrides{
			GasLimit: conf.Invoke.GasLimit,
		},
	})
	if derr != nil {
		return derr
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(res); err != nil {
		fmt.Println("failed to serialize response to json: ", err)
	}

	return nil
}
