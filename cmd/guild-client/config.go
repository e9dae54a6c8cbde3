package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guildlabs/guild-gateway/config"
	"github.com/guildlabs/guild-gateway/eth"
	"github.com/guildlabs/guild-gateway/log"
)

// InvokeConfig selects the guild, the target contract and the
// method the client invokes
type InvokeConfig struct {
	Guild    string
	Contract string
	Method   string
	Args     []string
	GasLimit uint64
}

func (c *InvokeConfig) Log(fields log.Fields) {
	fields.Add("invoke.guild", c.Guild)
	fields.Add("invoke.contract", c.Contract)
	fields.Add("invoke.method", c.Method)
}

func (c *InvokeConfig) Configure(v *viper.Viper) error {
	c.Guild = v.GetString("invoke.guild")
	if len(c.Guild) == 0 {
		return config.ErrKeyNotSet{Key: "invoke.guild"}
	}
	if !common.IsHexAddress(c.Guild) {
		return config.ErrInvalidValue{
			Key:          "invoke.guild",
			InvalidValue: c.Guild,
			Values:       []string{"a hex encoded contract address"},
		}
	}

	c.Contract = v.GetString("invoke.contract")
	if len(c.Contract) == 0 {
		return config.ErrKeyNotSet{Key: "invoke.contract"}
	}
	if !common.IsHexAddress(c.Contract) {
		return config.ErrInvalidValue{
			Key:          "invoke.contract",
			InvalidValue: c.Contract,
			Values:       []string{"a hex encoded contract address"},
		}
	}

	c.Method = v.GetString("invoke.method")
	if len(c.Method) == 0 {
		return config.ErrKeyNotSet{Key: "invoke.method"}
	}

	c.Args = v.GetStringSlice("invoke.args")
	c.GasLimit = v.GetUint64("invoke.gas_limit")
	return nil
}

func (c *InvokeConfig) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("invoke.guild", "",
		"address of the guild contract the call is proxied through")
	cmd.PersistentFlags().String("invoke.contract", "",
		"address of the target contract")
	cmd.PersistentFlags().String("invoke.method", "",
		"method to call on the target contract")
	cmd.PersistentFlags().StringSlice("invoke.args", nil,
		"arguments for the method. 0x prefixed values are sent as bytes")
	cmd.PersistentFlags().Uint64("invoke.gas_limit", 0,
		"gas limit for the transaction. 0 estimates it")

	return nil
}

// Config is the client's configuration, gathered from the command
// line flags, environment and an optional config file
type Config struct {
	Logging log.Config
	Eth     eth.Config
	Invoke  InvokeConfig
}

func (c *Config) Use() string {
	return "guild-client"
}

func (c *Config) EnvPrefix() string {
	return "GUILD_GW"
}

func (c *Config) Binders() []config.Binder {
	return []config.Binder{&c.Logging, &c.Eth, &c.Invoke}
}

func (c *Config) Log(fields log.Fields) {
	c.Logging.Log(fields)
	c.Eth.Log(fields)
	c.Invoke.Log(fields)
}
