// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for wxctl. It wires flags,
// validators, actions, and shell completion for subcommands, and assembles
// the forecast pipeline each command runs against.
package command
