// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output filters, transforms, sorts and renders command results as a
// text table, JSON or YAML.
package output
