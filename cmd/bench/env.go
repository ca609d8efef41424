package main

import (
	"flag"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

const envPrefix = "JSSP_"

// envName maps a flag name to its environment variable, ga_pop -> JSSP_GA_POP.
func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// applyEnv uses JSSP_* variables as flag defaults. Command-line flags parsed
// afterwards still win. A .env file in the working directory is loaded first
// when present; variables already set in the environment are kept.
func applyEnv(fs *flag.FlagSet, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "load %s", dotenv)
		}
	}
	var firstErr error
	fs.VisitAll(func(f *flag.Flag) {
		v, ok := os.LookupEnv(envName(f.Name))
		if !ok || firstErr != nil {
			return
		}
		if err := fs.Set(f.Name, v); err != nil {
			firstErr = errors.Wrapf(err, "%s=%q", envName(f.Name), v)
		}
	})
	return firstErr
}
