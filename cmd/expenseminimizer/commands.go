package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"expenseminimizer/internal/cache"
	"expenseminimizer/internal/chat"
	"expenseminimizer/internal/core"
	"expenseminimizer/internal/log"
	"expenseminimizer/internal/storage"
)

const janitorInterval = time.Minute

func newRootCmd(a *app) *cobra.Command {
	var monthFlag string

	root := &cobra.Command{
		Use:          "expenseminimizer",
		Short:        "Track monthly expenses and ask an advisor how to cut them",
		Long:         `Keeps a monthly ledger of monetary, time and emotional/mental expenses and chats with an AI advisor about the selected month.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&monthFlag, "month", "m", "", "Month to work on, YYYY-MM or \"March 2025\" (default: current month)")

	month := func() (core.Month, error) {
		if strings.TrimSpace(monthFlag) == "" {
			return core.MonthOf(a.now()), nil
		}
		if m, err := core.ParseMonth(monthFlag); err == nil {
			return m, nil
		}
		return core.ParseMonthLabel(monthFlag)
	}

	root.AddCommand(
		newAddCmd(a, month),
		newRemoveCmd(a, month),
		newListCmd(a, month),
		newTotalsCmd(a, month),
		newMonthsCmd(a),
		newChatCmd(a, month),
		newHistoryCmd(a),
		newClearChatCmd(a),
		newExportCmd(a, month),
	)
	root.SetOut(a.out)
	root.SetIn(a.in)
	return root
}

type monthFunc func() (core.Month, error)

func newAddCmd(a *app, month monthFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "add <category> <name> <amount>",
		Short:   "Add an expense to the month",
		Example: `  expenseminimizer add monetary Rent 1200
  expenseminimizer add time "Commute" 3,5 --month 2025-03`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := month()
			if err != nil {
				return err
			}
			c, err := core.ParseCategory(args[0])
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[2])
			if err != nil {
				return err
			}
			entry := core.Entry{Name: strings.TrimSpace(args[1]), Amount: amount}

			s, store, err := a.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := s.AddEntry(cmd.Context(), m, c, entry); err != nil {
				return err
			}
			total, err := s.Total(cmd.Context(), m, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) to %s for %s. Total: %s\n",
				entry.Name, core.FormatAmount(c, amount), c, m.Label(), core.FormatAmount(c, total))
			return nil
		},
	}
}

func newRemoveCmd(a *app, month monthFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <category> <number>",
		Short: "Remove an expense by the number shown in list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := month()
			if err != nil {
				return err
			}
			c, err := core.ParseCategory(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q is not an entry number", core.ErrValidation, args[1])
			}

			s, store, err := a.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := s.RemoveEntry(cmd.Context(), m, c, n-1); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %d from %s for %s\n", n, c, m.Label())
			return nil
		},
	}
}

func newListCmd(a *app, month monthFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the month's expenses by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := month()
			if err != nil {
				return err
			}
			s, store, err := a.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := s.Snapshot(cmd.Context(), m)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", m.Label())
			for _, c := range core.Categories() {
				entries := snap.Entries(c)
				fmt.Fprintf(out, "\n%s (total %s)\n", c, core.FormatAmount(c, snap.Total(c)))
				if len(entries) == 0 {
					fmt.Fprintln(out, "  no entries")
					continue
				}
				for i, e := range entries {
					fmt.Fprintf(out, "  %d. %s: %s\n", i+1, e.Name, core.FormatAmount(c, e.Amount))
				}
			}
			return nil
		},
	}
}

func newTotalsCmd(a *app, month monthFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show every category total for the month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := month()
			if err != nil {
				return err
			}
			s, store, err := a.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			ov, err := s.Overview(cmd.Context(), m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", m.Label())
			for _, t := range ov.Totals {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s (%d entries)\n", t.Category, core.FormatAmount(t.Category, t.Total), t.Count)
			}
			return nil
		},
	}
}

func newMonthsCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "months",
		Short: "List the selectable months starting from the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, m := range core.MonthOptions(core.MonthOf(a.now()), count) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", m, m.Label())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 12, "Number of months to list")
	return cmd
}

func newChatCmd(a *app, month monthFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the advisor about the month; without a message, start an interactive chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := month()
			if err != nil {
				return err
			}
			s, store, err := a.openSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) > 0 {
				turn, err := s.Send(cmd.Context(), m, strings.Join(args, " "))
				if err != nil {
					return err
				}
				printTurn(cmd, turn)
				return nil
			}
			return a.interactiveChat(cmd, m, s, store)
		},
	}
}

type sender interface {
	Send(ctx context.Context, m core.Month, text string) (chat.Turn, error)
}

// interactiveChat reads one message per line until EOF or "exit". Expired
// store cache entries are swept in the background while it runs.
func (a *app) interactiveChat(cmd *cobra.Command, m core.Month, s sender, store storage.Store) error {
	g, ctx := errgroup.WithContext(cmd.Context())
	ctx, cancel := context.WithCancel(ctx)

	if cs, ok := store.(*storage.CachedStore); ok {
		janitor := cache.NewJanitor(a.logger.WithComponent(log.ComponentStorage).Logger, cs.Cache())
		g.Go(func() error { return janitor.Run(ctx, janitorInterval) })
	}

	g.Go(func() error {
		defer cancel()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Chatting about %s. Type exit to quit.\n", m.Label())
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			switch line {
			case "":
				continue
			case "exit", "quit":
				return nil
			}
			turn, err := s.Send(ctx, m, line)
			if err != nil {
				if errors.Is(err, core.ErrValidation) {
					fmt.Fprintln(out, err)
					continue
				}
				return err
			}
			printTurn(cmd, turn)
		}
	})
	return g.Wait()
}

func printTurn(cmd *cobra.Command, turn chat.Turn) {
	fmt.Fprintf(cmd.OutOrStdout(), "Bot: %s\n", turn.BotText)
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the chat history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, store, err := a.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			turns := s.History()
			out := cmd.OutOrStdout()
			if len(turns) == 0 {
				fmt.Fprintln(out, "No messages yet.")
				return nil
			}
			for _, t := range turns {
				fmt.Fprintf(out, "You: %s\n", t.UserText)
				switch t.Status {
				case chat.Pending:
					fmt.Fprintln(out, "Bot: ...")
				case chat.Failed:
					fmt.Fprintf(out, "Bot (failed): %s\n", t.BotText)
				default:
					fmt.Fprintf(out, "Bot: %s\n", t.BotText)
				}
			}
			return nil
		},
	}
}

func newClearChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-chat",
		Short: "Delete the chat history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, store, err := a.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := s.ClearChat(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Chat history cleared.")
			return nil
		},
	}
}

func newExportCmd(a *app, month monthFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Append the month's expenses to the configured Google Sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := month()
			if err != nil {
				return err
			}
			exporter, err := a.newExporter(cmd.Context())
			if err != nil {
				return err
			}
			s, store, err := a.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := s.Snapshot(cmd.Context(), m)
			if err != nil {
				return err
			}
			ref, err := exporter.ExportMonth(cmd.Context(), snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", m.Label(), ref)
			return nil
		},
	}
}
