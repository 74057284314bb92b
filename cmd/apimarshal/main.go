package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/specx2/apimarshal/cmd/apimarshal/config"
	"github.com/specx2/apimarshal/core/definition"
	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/mapper"
	"github.com/specx2/apimarshal/core/marshal"
	"github.com/specx2/apimarshal/core/parser"
	"github.com/specx2/apimarshal/core/validate"
	"github.com/specx2/apimarshal/pkg/apimarshal"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "apimarshal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("apimarshal", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to the config file (default "+config.DefaultPath+")")
	endpoint := fs.String("endpoint", "", "Base URL operation paths are appended to")
	dryRun := fs.String("dry-run", "", "Print the request for this operation instead of serving")
	argsJSON := fs.String("args", "{}", "JSON object of input values for -dry-run")
	var definitions []string
	fs.Func("definitions", "Definitions file, native YAML or OpenAPI (repeatable)", func(value string) error {
		if strings.TrimSpace(value) != "" {
			definitions = append(definitions, value)
		}
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if len(definitions) > 0 {
		cfg.Definitions = definitions
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	operations, err := loadOperations(cfg.Definitions, logger)
	if err != nil {
		return err
	}

	if *dryRun != "" {
		return printDryRun(stdout, operations, *dryRun, cfg.Endpoint, *argsJSON)
	}

	excluded, err := mapper.ExcludePaths(cfg.Exclude...)
	if err != nil {
		return fmt.Errorf("invalid exclude pattern: %w", err)
	}

	srv, err := apimarshal.NewServer(operations,
		apimarshal.WithOperationMaps(excluded),
		apimarshal.WithGlobalTags(cfg.Tags...),
		apimarshal.WithBaseURL(cfg.Endpoint),
		apimarshal.WithHTTPClientConfig(&apimarshal.HTTPClientConfig{
			Timeout: cfg.Timeout,
			Headers: cfg.Headers,
		}),
		apimarshal.WithServerInfo(cfg.Server.Name, cfg.Server.Version),
		apimarshal.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("serving over stdio", "endpoint", cfg.Endpoint, "tools", len(srv.Tools()))
	return srv.ServeStdio(ctx, stdin, stdout)
}

func loadOperations(paths []string, logger *slog.Logger) ([]ir.Operation, error) {
	var operations []ir.Operation
	for _, path := range paths {
		ops, err := definition.LoadFile(path, parser.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Debug("definitions loaded", "path", path, "operations", len(ops))
		operations = append(operations, ops...)
	}
	return operations, nil
}

type dryRunOutput struct {
	Operation   string            `json:"operation"`
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers,omitempty"`
	ContentType string            `json:"contentType,omitempty"`
	Body        interface{}       `json:"body,omitempty"`
}

// printDryRun prepares and validates args the way a tool call does, then
// marshals one operation and writes the request as JSON. Binary bodies are
// printed base64 encoded.
func printDryRun(w io.Writer, operations []ir.Operation, id, endpoint, argsJSON string) error {
	var op *ir.Operation
	for i := range operations {
		if operations[i].ID == id {
			op = &operations[i]
			break
		}
	}
	if op == nil {
		return fmt.Errorf("unknown operation %q", id)
	}

	args, err := decodeArgs(argsJSON)
	if err != nil {
		return err
	}
	values, err := apimarshal.PrepareArguments(*op, args)
	if err != nil {
		return fmt.Errorf("invalid -args: %w", err)
	}

	validator, err := validate.New(op.Input)
	if err != nil {
		return err
	}
	if err := validator.Validate(values); err != nil {
		return err
	}

	req, err := marshal.Marshal(*op, endpoint, values)
	if err != nil {
		return err
	}

	out := dryRunOutput{
		Operation:   op.ID,
		Method:      req.Method,
		URL:         req.URL,
		ContentType: string(req.ContentType),
		Body:        req.Body,
	}
	if req.Header.Len() > 0 {
		out.Headers = req.Header.Map()
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// decodeArgs keeps numbers exact so large integers survive.
func decodeArgs(argsJSON string) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(argsJSON)))
	dec.UseNumber()
	var values map[string]interface{}
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("invalid -args: %w", err)
	}
	if values == nil {
		return nil, errors.New("invalid -args: expected a JSON object")
	}
	return values, nil
}
