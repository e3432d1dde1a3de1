package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rumik/ira/devbridge"
)

func newCallsCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Run the dev call-simulation bridge",
		Long:  "Runs the local call bridge the app polls in development, with an interactive prompt for staging call and hangup commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalls(cmd, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", devbridge.DefaultPort, "port to listen on")
	return cmd
}

func runCalls(cmd *cobra.Command, port int) error {
	out := cmd.OutOrStdout()

	log, err := newLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	srv := devbridge.NewServer(port, log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	fmt.Fprintf(out, "Call bridge running on http://localhost:%d\n", port)
	fmt.Fprintln(out, "Commands: call, hangup, status, clear, help, exit")

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "call":
			srv.Set(devbridge.CommandCall)
			fmt.Fprintln(out, "Command set: incoming call. The app will pick it up within one poll interval.")

		case "hangup":
			srv.Set(devbridge.CommandHangup)
			fmt.Fprintln(out, "Command set: hangup.")

		case "status":
			if cur := srv.Current(); cur != "" {
				fmt.Fprintf(out, "Current command: %s\n", cur)
			} else {
				fmt.Fprintln(out, "Current command: none")
			}

		case "clear":
			srv.Clear()
			fmt.Fprintln(out, "Command cleared.")

		case "help":
			fmt.Fprintln(out, "Commands: call, hangup, status, clear, help, exit")

		case "exit", "quit":
			cancel()
			return <-errCh

		case "":
			// keep prompting

		default:
			fmt.Fprintln(out, `Unknown command. Type "help" for the list.`)
		}
		fmt.Fprint(out, "> ")
	}

	cancel()
	if err := scanner.Err(); err != nil {
		<-errCh
		return err
	}
	return <-errCh
}
