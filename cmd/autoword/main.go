// Command autoword drives one or more process_document runs from the
// command line: process a single file, batch a directory, dry-run a plan
// without ever writing, inspect past audit runs, or serve the read-only
// surface over MCP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/hazyhaar/autoword-vnext"
	"github.com/hazyhaar/autoword-vnext/internal/apperr"
	"github.com/hazyhaar/autoword-vnext/internal/config"
	"github.com/hazyhaar/autoword-vnext/internal/extractor"
	"github.com/hazyhaar/autoword-vnext/internal/llmclient"
	"github.com/hazyhaar/autoword-vnext/internal/mcpsurface"
	"github.com/hazyhaar/autoword-vnext/internal/model"
	"github.com/hazyhaar/autoword-vnext/internal/planner"
	"github.com/hazyhaar/autoword-vnext/internal/safeio"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Exit codes per the process_document status contract.
const (
	exitSuccess          = 0
	exitError            = 1
	exitFailedValidation = 2
	exitRollback         = 3
	exitInvalidPlan      = 4
	exitUnknown          = 5
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitError)
	}

	logger := newLogger(env("LOG_LEVEL", "info"))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var code int
	switch os.Args[1] {
	case "process":
		code = cmdProcess(ctx, os.Args[2:], logger)
	case "batch":
		code = cmdBatch(ctx, os.Args[2:], logger)
	case "dry-run":
		code = cmdDryRun(ctx, os.Args[2:], logger)
	case "status":
		code = cmdStatus(os.Args[2:], logger)
	case "config":
		code = cmdConfig(os.Args[2:])
	case "mcp-serve":
		code = cmdMCPServe(ctx, os.Args[2:], logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		code = exitError
	}
	os.Exit(code)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `autoword — closed-loop docx extract/plan/execute/validate/audit pipeline

usage:
  autoword process   <file.docx> "<intent>" [--config path] [--audit-dir dir]
  autoword batch     <dir> "<intent>" [--config path] [--audit-dir dir]
  autoword dry-run   <file.docx> "<intent>" [--config path]
  autoword status    [--audit-dir dir]
  autoword config    show | create <path>
  autoword mcp-serve [--audit-dir dir]

Reads the language-model API key from OPENAI_API_KEY (or AUTOWORD_LM_API_KEY).
`)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "api_key" || a.Key == "secret" {
				a.Value = slog.StringValue(safeio.RedactSecret(a.Value.String()))
			}
			return a
		},
	}))
}

func lmAPIKey() (string, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		key = os.Getenv("AUTOWORD_LM_API_KEY")
	}
	if err := safeio.ValidateSecret([]byte(key)); err != nil {
		return "", fmt.Errorf("no usable language-model API key in OPENAI_API_KEY / AUTOWORD_LM_API_KEY: %w", err)
	}
	return key, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLMClient(cfg config.Config, log *slog.Logger) (planner.LMClient, error) {
	key, err := lmAPIKey()
	if err != nil {
		return nil, err
	}
	opts := []llmclient.Option{llmclient.WithLogger(log)}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, llmclient.WithBaseURL(cfg.LLM.BaseURL))
	}
	if cfg.LLM.CallTimeout > 0 {
		opts = append(opts, llmclient.WithTimeout(cfg.LLM.CallTimeout))
	}
	return llmclient.New(key, cfg.LLM.ModelID, opts...), nil
}

func exitCodeFor(result model.Result, err error) int {
	if err != nil {
		if kind, ok := apperr.KindOf(err); ok {
			switch kind {
			case apperr.ConfigError, apperr.AuditError:
				return exitError
			}
		}
		return exitError
	}
	switch result.Status {
	case model.StatusSuccess:
		return exitSuccess
	case model.StatusFailedValidation:
		return exitFailedValidation
	case model.StatusRollback:
		return exitRollback
	case model.StatusInvalidPlan:
		return exitInvalidPlan
	default:
		return exitUnknown
	}
}

func parseCommonFlags(args []string) (positional []string, configPath, auditDir string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		case "--audit-dir":
			if i+1 < len(args) {
				auditDir = args[i+1]
				i++
			}
		default:
			positional = append(positional, args[i])
		}
	}
	return positional, configPath, auditDir
}

func cmdProcess(ctx context.Context, args []string, log *slog.Logger) int {
	positional, configPath, auditDir := parseCommonFlags(args)
	if len(positional) < 2 {
		fmt.Fprintln(os.Stderr, "process requires <file.docx> and \"<intent>\"")
		return exitError
	}
	docxPath, userIntent := positional[0], positional[1]

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitError
	}
	client, err := newLMClient(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}

	opts := autoword.Options{AuditDir: auditDir}
	result, err := autoword.ProcessDocument(ctx, docxPath, userIntent, client, opts, log)
	printResult(result, err)
	return exitCodeFor(result, err)
}

func cmdBatch(ctx context.Context, args []string, log *slog.Logger) int {
	positional, configPath, auditDir := parseCommonFlags(args)
	if len(positional) < 2 {
		fmt.Fprintln(os.Stderr, "batch requires <dir> and \"<intent>\"")
		return exitError
	}
	dir, userIntent := positional[0], positional[1]

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitError
	}
	client, err := newLMClient(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read dir: %v\n", err)
		return exitError
	}

	worst := exitSuccess
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".docx" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		opts := autoword.Options{AuditDir: auditDir}
		result, err := autoword.ProcessDocument(ctx, path, userIntent, client, opts, log)
		fmt.Fprintf(os.Stderr, "%s: ", path)
		printResult(result, err)
		if code := exitCodeFor(result, err); code != exitSuccess && code > worst {
			worst = code
		}
		if ctx.Err() != nil {
			break
		}
	}
	return worst
}

func cmdDryRun(ctx context.Context, args []string, log *slog.Logger) int {
	positional, configPath, _ := parseCommonFlags(args)
	if len(positional) < 2 {
		fmt.Fprintln(os.Stderr, "dry-run requires <file.docx> and \"<intent>\"")
		return exitError
	}
	docxPath, userIntent := positional[0], positional[1]

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitError
	}
	client, err := newLMClient(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}

	ext := extractor.New()
	structure, _, warnings, err := ext.Extract(docxPath, string(cfg.RevisionStrategy))
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		return exitError
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	pl := planner.New(client, planner.WithMaxRetries(cfg.LLM.MaxRetries), planner.WithLogger(log))
	plan, err := pl.Plan(ctx, structure, userIntent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "plan rejected: %v\n", err)
		return exitInvalidPlan
	}

	fmt.Printf("%d operation(s) planned:\n", len(plan.Ops))
	for i, op := range plan.Ops {
		fmt.Printf("  %d. %+v\n", i, op)
	}
	return exitSuccess
}

func cmdStatus(args []string, log *slog.Logger) int {
	_, _, auditDir := parseCommonFlags(args)
	if auditDir == "" {
		auditDir = config.Default().Audit.BaseDir
	}

	entries, err := os.ReadDir(auditDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("no runs recorded")
			return exitSuccess
		}
		fmt.Fprintf(os.Stderr, "read audit dir: %v\n", err)
		return exitError
	}

	type row struct{ runID, status string }
	var rows []row
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		statusPath := filepath.Join(auditDir, e.Name(), "result.status.txt")
		data, err := os.ReadFile(statusPath)
		status := "UNKNOWN"
		if err == nil {
			status = string(data)
		}
		rows = append(rows, row{runID: e.Name(), status: status})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].runID > rows[j].runID })
	for _, r := range rows {
		fmt.Printf("%s\t%s\n", r.runID, r.status)
	}
	return exitSuccess
}

func cmdConfig(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "config requires a subcommand: show | create <path>")
		return exitError
	}
	switch args[0] {
	case "show":
		fmt.Print(config.Template())
		return exitSuccess
	case "create":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "config create requires a destination path")
			return exitError
		}
		if err := os.WriteFile(args[1], []byte(config.Template()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			return exitError
		}
		return exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args[0])
		return exitError
	}
}

func cmdMCPServe(ctx context.Context, args []string, log *slog.Logger) int {
	_, configPath, auditDir := parseCommonFlags(args)
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitError
	}
	if auditDir == "" {
		auditDir = cfg.Audit.BaseDir
	}
	client, err := newLMClient(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}

	ext := extractor.New()
	pl := planner.New(client, planner.WithMaxRetries(cfg.LLM.MaxRetries), planner.WithLogger(log))
	surface := mcpsurface.New(ext, pl, string(cfg.RevisionStrategy), auditDir)

	srv := mcp.NewServer(&mcp.Implementation{Name: "autoword", Version: "1.0.0"}, nil)
	surface.Register(srv)

	log.Info("mcp-serve: listening on stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "mcp serve: %v\n", err)
		return exitError
	}
	return exitSuccess
}

func printResult(result model.Result, err error) {
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	fmt.Printf("%s (audit: %s)\n", result.Status, result.AuditDir)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}
