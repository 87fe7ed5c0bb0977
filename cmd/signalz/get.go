package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoobzio/signalz"
)

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get FILE [PATH]",
		Short: "Print the value at a path",
		Long: `Load FILE into a Signal and print the value at PATH, or the whole
document when PATH is omitted. A missing path prints null.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			codec, _ := cfg.codec()

			sig, err := loadSignal(args[0], codec)
			if err != nil {
				return err
			}

			var value any
			if len(args) == 2 {
				value = sig.Get(args[1])
			} else {
				value = sig.Peek()
			}
			return newPrinter(cmd.OutOrStdout(), cfg.Output).print(value)
		},
	}
	addCommonFlags(cmd)
	return cmd
}

// loadSignal decodes path with codec into a new Signal.
func loadSignal(path string, codec signalz.Codec, opts ...signalz.Option) (*signalz.Signal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return signalz.New(doc, opts...)
}
