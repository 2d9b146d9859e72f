package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shuliakovsky/relay-admin/pkg/registry"
)

var errInvalid = errors.New("validation failed")

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:           "relay-validate",
		Short:         "Check relays.json for malformed and duplicate relays",
		Long:          "Reads the relay registry without modifying it and reports every entry that is not a ws:// or wss:// URL or that duplicates an earlier entry once normalized.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(file, stdout, stderr)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", envOr("RELAY_FILE", "relays.json"), "path to the relay registry")
	return cmd
}

func run(file string, stdout, stderr io.Writer) error {
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	raw, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(stderr, red("Validation error:"), err)
		return err
	}

	issues := registry.Validate(raw)
	if len(issues) > 0 {
		fmt.Fprintln(stderr, red("Validation failed:"))
		for _, issue := range issues {
			fmt.Fprintln(stderr, "- "+issue)
		}
		return errInvalid
	}

	doc, err := registry.NewStore(file, nil).Load()
	if err != nil {
		fmt.Fprintln(stderr, red("Validation error:"), err)
		return err
	}
	fmt.Fprintf(stdout, "%s %d relays, no duplicates, protocols valid.\n", green("OK:"), len(doc.Relays))
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
