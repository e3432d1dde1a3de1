package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rumik/ira"
	"github.com/rumik/ira/auth"
	"github.com/rumik/ira/chatapi"
	"github.com/rumik/ira/kvstore"
	"github.com/rumik/ira/session"
)

type chatOpts struct {
	apiURL    string
	storeType string
	redisAddr string
	guest     bool
	verbose   bool
}

func newChatCmd() *cobra.Command {
	opts := &chatOpts{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with Ira from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.apiURL, "api-url", envOr("IRA_API_URL", "https://rumik-ai.vercel.app"), "chat API base URL")
	cmd.Flags().StringVar(&opts.storeType, "store", envOr("IRA_STORE", "memory"), "store driver: memory or redis")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", envOr("IRA_REDIS_ADDR", "localhost:6379"), "redis address for --store=redis")
	cmd.Flags().BoolVar(&opts.guest, "guest", false, "force a guest session regardless of stored identity")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	return cmd
}

func runChat(cmd *cobra.Command, opts *chatOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	log, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := newStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	api, err := chatapi.New(chatapi.Config{BaseURL: opts.apiURL})
	if err != nil {
		return err
	}

	isGuest := opts.guest
	if !isGuest {
		isGuest, err = auth.IsGuest(ctx, store)
		if err != nil {
			log.Warn("could not read stored identity, assuming guest", zap.Error(err))
			isGuest = true
		}
	}

	mgr := session.New(store, api, isGuest, session.WithLogger(log))
	mgr.Load(ctx)

	for _, msg := range mgr.Messages() {
		printMessage(out, msg)
	}
	if isGuest {
		fmt.Fprintf(out, "(guest session: %d messages before login is required)\n", session.DefaultGuestLimit)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "/") {
			if quit := runSlashCommand(ctx, out, mgr, line); quit {
				return nil
			}
			fmt.Fprint(out, "> ")
			continue
		}

		switch mgr.Send(ctx, line) {
		case session.SendSent:
			msgs := mgr.Messages()
			printMessage(out, msgs[len(msgs)-1])
		case session.SendQuotaExceeded:
			fmt.Fprintln(out, "You've reached the free message limit. Log in with your phone number to keep chatting.")
		case session.SendFailed:
			fmt.Fprintln(out, "Failed to send message. Please try again.")
		case session.SendIgnored:
			// Blank line or a send still in flight.
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func runSlashCommand(ctx context.Context, out io.Writer, mgr *session.Manager, line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/clear":
		if err := mgr.Clear(ctx); err != nil {
			fmt.Fprintf(out, "Chat cleared, but the purge may not have stuck: %v\n", err)
		} else {
			fmt.Fprintln(out, "Chat cleared.")
		}

	case "/delete":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: /delete <message-id>")
			break
		}
		if err := mgr.Delete(ctx, fields[1]); err != nil {
			fmt.Fprintf(out, "Delete may not have stuck: %v\n", err)
		}

	case "/reply":
		if len(fields) < 2 {
			mgr.SetReplyTarget(nil)
			fmt.Fprintln(out, "Reply cancelled.")
			break
		}
		msg, ok := mgr.Find(fields[1])
		if !ok {
			fmt.Fprintln(out, "No such message.")
			break
		}
		mgr.SetReplyTarget(&msg)
		fmt.Fprintf(out, "Replying to %s: %q\n", msg.Sender, msg.Text)

	case "/history":
		for _, msg := range mgr.Messages() {
			printMessage(out, msg)
		}

	default:
		fmt.Fprintln(out, "Commands: /reply <id>, /delete <id>, /clear, /history, /quit")
	}
	return false
}

func printMessage(out io.Writer, msg ira.Message) {
	label := "Ira"
	if msg.Sender == ira.SenderUser {
		label = "You"
	}
	if msg.ReplyTo != nil {
		fmt.Fprintf(out, "%s (re %q): %s\n", label, msg.ReplyTo.Text, msg.Text)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, msg.Text)
}

func newStore(opts *chatOpts) (kvstore.Store, error) {
	switch kvstore.StoreType(opts.storeType) {
	case kvstore.StoreTypeRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		return kvstore.NewStore(kvstore.StoreTypeRedis, kvstore.WithRedisClient(client))
	default:
		return kvstore.NewStore(kvstore.StoreTypeMemory)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
