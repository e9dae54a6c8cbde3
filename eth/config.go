package eth

import (
	stderr "errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guildlabs/guild-gateway/config"
	"github.com/guildlabs/guild-gateway/log"
)

// Config is the configuration of the connection to the ethereum
// endpoint and of the account used to submit transactions
type Config struct {
	URL              string
	PrivateKey       string
	GasPrice         int64
	ReceiptTimeoutMs int32
}

func (c *Config) Log(fields log.Fields) {
	fields.Add("eth.url", c.URL)
	fields.Add("eth.gas_price", c.GasPrice)
	fields.Add("eth.receipt_timeout_ms", c.ReceiptTimeoutMs)
}

func (c *Config) Configure(v *viper.Viper) error {
	c.URL = v.GetString("eth.url")
	if len(c.URL) == 0 {
		return config.ErrKeyNotSet{Key: "eth.url"}
	}

	c.PrivateKey = v.GetString("eth.private_key")
	if len(c.PrivateKey) == 0 {
		return config.ErrKeyNotSet{Key: "eth.private_key"}
	}

	c.GasPrice = v.GetInt64("eth.gas_price")
	if c.GasPrice < 0 {
		return stderr.New("eth.gas_price cannot be negative")
	}

	c.ReceiptTimeoutMs = v.GetInt32("eth.receipt_timeout_ms")
	if c.ReceiptTimeoutMs < 0 {
		return stderr.New("eth.receipt_timeout_ms cannot be negative")
	}

	return nil
}

func (c *Config) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("eth.url", "",
		"endpoint to the ethereum node")
	cmd.PersistentFlags().String("eth.private_key", "",
		"hex encoded private key of the wallet used to submit transactions")
	cmd.PersistentFlags().Int64("eth.gas_price", defaultGasPrice,
		"gas price for transactions that do not override it")
	cmd.PersistentFlags().Int32("eth.receipt_timeout_ms", 10000,
		"upper bound on the backoff while polling for a transaction receipt")

	return nil
}
