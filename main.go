/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/biodash/cmd"
	"github.com/humaidq/biodash/logging"
)

func main() {
	logging.Init()

	app := &cli.Command{
		Name:  "biodash",
		Usage: "biodash - biomarker dashboard API",
		Commands: []*cli.Command{
			cmd.CmdStart,
			cmd.CmdMigrate,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.Logger(logging.SourceApp).Fatal("biodash exited", "error", err)
	}
}
