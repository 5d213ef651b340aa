package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Aida-adzd/smart-news-summarizer/internal/handler"
	"github.com/Aida-adzd/smart-news-summarizer/internal/rpc"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/llm"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rpcURL string
	apiKey string
)

var rootCmd = &cobra.Command{
	Use:   "digest",
	Short: "Drive the smart news JSON-RPC tools from the command line",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if apiKey == "" {
			apiKey = os.Getenv("MCP_API_KEY")
		}
	},
	SilenceUsage: true,
}

// sendCmd is the scheduled run: build the digest for one day and mail it.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Email a news digest for the given topics",
	Example: `  digest send --email me@example.com --topic technology=5 --topic sports=3
  digest send --date 2025-10-02 --email me@example.com --topic crime=2`,
	RunE: runSend,
}

var callCmd = &cobra.Command{
	Use:   "call METHOD [PARAMS_JSON]",
	Short: "Call any registered tool with raw JSON params",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCall,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the server exposes",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

var (
	sendDate    string
	sendEmail   string
	sendSubject string
	sendTopics  []string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rpcURL, "url", "http://localhost:8000/jsonrpc", "JSON-RPC endpoint")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (defaults to $MCP_API_KEY)")

	sendCmd.Flags().StringVar(&sendDate, "date", "", "day of the news, YYYY-MM-DD (defaults to today)")
	sendCmd.Flags().StringVar(&sendEmail, "email", "", "recipient address")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "email subject")
	sendCmd.Flags().StringArrayVar(&sendTopics, "topic", nil, "topic=count, repeatable")
	sendCmd.MarkFlagRequired("email")
	sendCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(sendCmd, callCmd, toolsCmd)
}

func main() {
	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() *rpc.Client {
	return rpc.NewClient(rpcURL, handler.APIKeyHeader, apiKey)
}

func runSend(cmd *cobra.Command, args []string) error {
	topics, err := parseTopics(sendTopics)
	if err != nil {
		return err
	}

	date := sendDate
	if date == "" {
		date = time.Now().Format(time.DateOnly)
	}

	params := handler.SmartNewsEmailParams{
		Date:    date,
		Email:   sendEmail,
		Topics:  topics,
		Subject: sendSubject,
	}

	var res handler.SmartNewsEmailResult
	if err := newClient().Call(cmd.Context(), "tool.smart_news_email", params, &res); err != nil {
		return err
	}

	slog.Info("digest sent", "email", res.Email, "file", res.File, "digest_id", res.DigestID)
	return printJSON(res)
}

func runCall(cmd *cobra.Command, args []string) error {
	var params json.RawMessage
	if len(args) == 2 {
		params = json.RawMessage(args[1])
		if !json.Valid(params) {
			return fmt.Errorf("params are not valid JSON: %s", args[1])
		}
	}

	var res json.RawMessage
	if err := newClient().Call(cmd.Context(), args[0], params, &res); err != nil {
		return err
	}

	return printJSON(res)
}

func runTools(cmd *cobra.Command, args []string) error {
	var res rpc.DiscoverResult
	if err := newClient().Call(cmd.Context(), rpc.DiscoverMethod, nil, &res); err != nil {
		return err
	}

	for _, m := range res.Methods {
		fmt.Printf("%-24s %s\n", m.Name, m.Description)
	}
	return nil
}

// parseTopics turns "sports=3" flags into topic params. A bare topic gets
// five articles.
func parseTopics(values []string) ([]handler.TopicParams, error) {
	topics := make([]handler.TopicParams, 0, len(values))
	for _, v := range values {
		name, countStr, found := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid topic %q", v)
		}

		count := llm.DefaultCount
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil {
				return nil, fmt.Errorf("invalid count in %q: %w", v, err)
			}
			count = n
		}

		topics = append(topics, handler.TopicParams{Topic: name, Count: count})
	}
	return topics, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
