/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cmd implements the command line interface of the notesync server
package cmd

import (
	"fmt"
	"os"

	"github.com/dnote/notesync/pkg/server/buildinfo"
	"github.com/dnote/notesync/pkg/server/config"
	"github.com/dnote/notesync/pkg/server/log"
)

func rootCmd() {
	fmt.Printf(`notesync server - the backend notesync clients sync notes with

Usage:
  notesync-server [command] [flags]

Available commands:
  start: Start the server (use 'notesync-server start --help' for flags)
  user: Manage users (use 'notesync-server user' for subcommands)
  version: Print the version
`)
}

func versionCmd() {
	fmt.Printf("notesync-server-%s\n", buildinfo.Version)
}

// Execute is the main entry point for the CLI
func Execute() {
	if err := config.LoadEnv(".env"); err != nil {
		log.ErrorWrap(err, "loading .env")
	}

	if len(os.Args) < 2 {
		rootCmd()
		return
	}

	cmd := os.Args[1]

	switch cmd {
	case "start":
		exitOnError(startCmd(os.Args[2:]))
	case "user":
		exitOnError(userCmd(os.Args[2:], os.Stdin))
	case "version":
		versionCmd()
	default:
		fmt.Printf("Unknown command %s\n", cmd)
		rootCmd()
		os.Exit(1)
	}
}
