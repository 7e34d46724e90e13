package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var a app

	root := &cobra.Command{
		Use:          "roadside",
		Short:        "Roadside rescue client for drivers and mechanics",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := newApp(in, out)
			if err != nil {
				return err
			}
			a = *built
			return nil
		},
	}
	root.SetOut(out)

	root.AddCommand(
		newLoginCmd(&a),
		newRegisterCmd(&a),
		newLogoutCmd(&a),
		newWhoamiCmd(&a),
		newDriverCmd(&a),
		newMechanicCmd(&a),
	)
	return root
}
