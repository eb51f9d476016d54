package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/feedpulse/internal/app"
	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/services/chat"
)

func chatCmd(g *globalFlags) *cobra.Command {
	var conversationID, feedbackID, customerID string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the feedback agent; without a message, start an interactive session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := chat.NewSession(a.Client, a.Logger, chat.WithUnavailableMessage(a.Config.Chat.UnavailableMessage))
			if conversationID != "" {
				if err := sess.LoadConversation(cmd.Context(), conversationID); err != nil {
					return sessionError(err)
				}
			}

			message := ""
			if len(args) == 1 {
				message = args[0]
			}
			if message == "" {
				message, err = presetPrompt(cmd, a, feedbackID, customerID)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			reply, err := sess.OpenWithMessage(cmd.Context(), message)
			if err := chatFailure(reply, err); err != nil {
				return err
			}
			if reply != nil {
				fmt.Fprint(out, formatMessage(*reply))
			}
			if message != "" {
				return nil
			}
			return chatLoop(cmd, sess, cmd.InOrStdin(), out)
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "resume a stored conversation")
	cmd.Flags().StringVar(&feedbackID, "feedback", "", "ask about one feedback item")
	cmd.Flags().StringVar(&customerID, "customer", "", "ask about one customer")

	cmd.AddCommand(chatHistoryCmd(g))
	return cmd
}

func chatHistoryCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List stored conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := chat.NewSession(a.Client, a.Logger).History(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, list, func() string {
				return formatConversations(list)
			})
		},
	}
}

// presetPrompt builds the opening question for --feedback or --customer.
func presetPrompt(cmd *cobra.Command, a *app.App, feedbackID, customerID string) (string, error) {
	switch {
	case feedbackID != "":
		f, err := a.Client.GetFeedback(cmd.Context(), feedbackID)
		if err != nil {
			return "", sessionError(err)
		}
		return chat.FeedbackPrompt(f.Text), nil
	case customerID != "":
		c, err := a.Client.GetCustomer(cmd.Context(), customerID)
		if err != nil {
			return "", sessionError(err)
		}
		return chat.CustomerPrompt(c.CompanyName), nil
	}
	return "", nil
}

// chatFailure reports errors that left nothing in the transcript. A failed
// send with an error reply is shown like any other reply.
func chatFailure(reply *chat.Message, err error) error {
	if err == nil {
		return nil
	}
	if reply == nil || errors.Is(err, client.ErrUnauthorized) {
		return sessionError(err)
	}
	return nil
}

func chatLoop(cmd *cobra.Command, sess *chat.Session, in io.Reader, out io.Writer) error {
	if len(sess.Snapshot().Messages) == 0 {
		fmt.Fprint(out, formatSuggestions(chat.SuggestedPrompts))
	}
	fmt.Fprintln(out, "Type a question, /new for a fresh conversation, /history, or /exit.")

	scanner := bufio.NewScanner(in)
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
		case "/exit", "/quit":
			return nil
		case "/new":
			sess.NewConversation()
			fmt.Fprintln(out, "Started a new conversation.")
			continue
		case "/history":
			list, err := sess.History(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "Could not load history: %v\n", err)
				continue
			}
			fmt.Fprint(out, formatConversations(list))
			continue
		}

		reply, err := sess.Send(cmd.Context(), line)
		if err := chatFailure(reply, err); err != nil {
			return err
		}
		if reply != nil {
			fmt.Fprint(out, formatMessage(*reply))
		}
	}
}
