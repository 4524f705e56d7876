package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	cmd := rootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"login", "products", "categories", "methods", "users", "cart", "checkout", "sales", "demo", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

// TestRunDemo drives the whole terminal against the embedded backend:
// sign-in, catalog, basket, settlement, and the daily summary.
func TestRunDemo(t *testing.T) {
	require.NoError(t, runDemo(context.Background()))
}
