// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/lending/vms/poolvm"
	"github.com/luxfi/lending/vms/poolvm/cmd/accrual"
	"github.com/luxfi/lending/vms/poolvm/cmd/run"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func main() {
	cmd := &cobra.Command{
		Use:     "poolvm",
		Short:   "Runs and inspects isolated lending pool chains",
		Version: poolvm.Version,
	}
	cmd.AddCommand(
		run.Command(),
		accrual.Command(),
	)
	ctx := context.Background()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
