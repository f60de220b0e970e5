// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staranto/wxctlgo/internal/config"
)

func TestMangleArguments(t *testing.T) {
	prev := config.Config
	t.Cleanup(func() { config.Config = prev })

	config.Config = config.Type{Data: map[string]interface{}{
		"fq": map[string]interface{}{
			"defaults": []interface{}{"--titles"},
			"brief":    []interface{}{"--days 3", "--attrs date,temp"},
		},
	}}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults follow the command",
			args: []string{"wxctl", "fq", "hanoi", "--units", "f"},
			want: []string{"wxctl", "fq", "--titles", "hanoi", "--units", "f"},
		},
		{
			name: "named set replaces its marker",
			args: []string{"wxctl", "fq", "hanoi", "@brief", "-o", "json"},
			want: []string{"wxctl", "fq", "hanoi", "--days", "3", "--attrs", "date,temp", "-o", "json"},
		},
		{
			name: "unknown set expands to nothing",
			args: []string{"wxctl", "fq", "@nope", "hanoi"},
			want: []string{"wxctl", "fq", "hanoi"},
		},
		{
			name: "command without sets",
			args: []string{"wxctl", "cq", "-o", "json"},
			want: []string{"wxctl", "cq", "-o", "json"},
		},
		{
			name: "help short-circuits",
			args: []string{"wxctl", "fq", "hanoi", "-h"},
			want: []string{"wxctl", "fq", "--help"},
		},
		{
			name: "lone at sign is an argument",
			args: []string{"wxctl", "cq", "@"},
			want: []string{"wxctl", "cq", "@"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}
