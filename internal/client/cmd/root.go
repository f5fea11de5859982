package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/neelgujarathi/ZoomProject/internal/client/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "huddle",
	Short: "Multi-party video calls from the terminal, peer to peer over WebRTC",
	Long: `Huddle connects every participant of a room directly to every other
participant over WebRTC. The server only relays session negotiation and
chat; audio and video never touch it.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
