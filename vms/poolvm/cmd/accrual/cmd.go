// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accrual

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "accrual",
		Short: "Prints the loan accrual of a reserve over a period",
		RunE:  accrualFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func accrualFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	accrual, irMod, err := pool.CalcAccrual(&config.Reserve, config.Util, config.IRMod, 0, config.Elapsed)
	if err != nil {
		return err
	}
	out := c.OutOrStdout()
	fmt.Fprintf(out, "accrual:  %s\n", accrual.Dec())
	fmt.Fprintf(out, "ir mod:   %s\n", irMod.Dec())
	return nil
}
