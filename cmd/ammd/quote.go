package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"liquidityCore/internal/config"
	"liquidityCore/internal/curve"
	"liquidityCore/internal/engine"
	"liquidityCore/internal/model"
)

type quoteResult struct {
	Curve     string `json:"curve"`
	AmountIn  string `json:"amount_in"`
	Fee       string `json:"fee"`
	NetIn     string `json:"net_in"`
	AmountOut string `json:"amount_out"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	reserveIn, err := parsePositive("reserve-in", cfg.ReserveIn)
	if err != nil {
		return err
	}
	reserveOut, err := parsePositive("reserve-out", cfg.ReserveOut)
	if err != nil {
		return err
	}
	amountIn, err := parsePositive("amount-in", cfg.AmountIn)
	if err != nil {
		return err
	}
	if cfg.FeeBps > engine.MaxFeeBps {
		return fmt.Errorf("fee-bps must be at most %d", engine.MaxFeeBps)
	}

	curveType := curve.Volatile
	if cfg.Stable {
		curveType = curve.Stable
	}

	fee := new(big.Int).Mul(amountIn, big.NewInt(int64(cfg.FeeBps)))
	fee.Quo(fee, big.NewInt(10000))
	net := new(big.Int).Sub(amountIn, fee)

	out, err := curve.AmountOut(reserveIn, reserveOut, net, curveType)
	if err != nil {
		return err
	}

	result := quoteResult{
		Curve:     curveType.String(),
		AmountIn:  amountIn.String(),
		Fee:       fee.String(),
		NetIn:     net.String(),
		AmountOut: out.String(),
	}
	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(result)
}

func parsePositive(name, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	parsed, err := model.ParseAmount(value)
	if err != nil {
		return nil, err
	}
	if parsed.Sign() <= 0 {
		return nil, fmt.Errorf("%s must be positive", name)
	}
	return parsed, nil
}
