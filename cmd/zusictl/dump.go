package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/zusictl/internal/protocol"
	"github.com/spf13/cobra"
)

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file|->",
		Short: "Print the message trees of a captured stream",
		Long: `Decode every message in a captured Zusi byte stream and print it as an
indented tree. "-" reads from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return dump(in, cmd.OutOrStdout())
		},
	}
}

// dump decodes messages from in until a clean end of stream.
func dump(in io.Reader, out io.Writer) error {
	for i := 0; ; i++ {
		msg, err := protocol.DecodeWithLimits(in, protocol.DefaultLimits())
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		fmt.Fprintf(out, "# message %d (%d bytes)\n", i, protocol.EncodedLen(&msg))
		if err := protocol.Format(out, &msg); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}
