package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// lookupEnv is replaced in tests.
var lookupEnv = os.LookupEnv

// stringSetting resolves a string option. A flag given on the command line wins,
// then the environment variable env, then the first non-empty fallback, then the flag default.
func stringSetting(cmd *cobra.Command, flag, env string, fallbacks ...string) string {
	value, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}
	if env != "" {
		if v, ok := lookupEnv(env); ok && v != "" {
			return v
		}
	}
	for _, fb := range fallbacks {
		if fb != "" {
			return fb
		}
	}
	return value
}

// boolSetting resolves a boolean option. Any non-empty environment value other than
// "0" or "false" enables it.
func boolSetting(cmd *cobra.Command, flag, env string, fallback bool) bool {
	value, _ := cmd.Flags().GetBool(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}
	if env != "" {
		if v, ok := lookupEnv(env); ok && v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			return v != "0" && v != "false"
		}
	}
	return value || fallback
}

// listSetting resolves a comma separated list option.
func listSetting(cmd *cobra.Command, flag, env string, fallback []string) []string {
	value := stringSetting(cmd, flag, env)
	if value == "" {
		return fallback
	}
	return splitList(value)
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
