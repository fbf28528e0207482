// ABOUTME: Entry point for the warmpath CLI, TUI, and MCP server
// ABOUTME: Loads config, opens the storage backend, and routes to subcommands
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harperreed/warmpath/charm"
	"github.com/harperreed/warmpath/cli"
	"github.com/harperreed/warmpath/config"
	"github.com/harperreed/warmpath/db"
	"github.com/harperreed/warmpath/logging"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/storage"
	"github.com/harperreed/warmpath/tui"
	"github.com/harperreed/warmpath/workspace"
)

const version = "0.1.0"

type command func(ws *workspace.Workspace, out io.Writer, args []string) error

var groups = map[string]map[string]command{
	"clients": {
		"add":    cli.ClientsAddCommand,
		"list":   cli.ClientsListCommand,
		"delete": cli.ClientsDeleteCommand,
	},
	"prospects": {
		"import": cli.ProspectsImportCommand,
		"list":   cli.ProspectsListCommand,
	},
	"referrals": {
		"list":    cli.ReferralsListCommand,
		"show":    cli.ReferralsShowCommand,
		"stage":   cli.ReferralsStageCommand,
		"advance": cli.ReferralsAdvanceCommand,
		"update":  cli.ReferralsUpdateCommand,
		"remove":  cli.ReferralsRemoveCommand,
	},
	"tasks": {
		"list": cli.TasksListCommand,
		"add":  cli.TasksAddCommand,
		"done": cli.TasksDoneCommand,
	},
	"templates": {
		"list":   cli.TemplatesListCommand,
		"import": cli.TemplatesImportCommand,
		"export": cli.TemplatesExportCommand,
		"reset":  cli.TemplatesResetCommand,
	},
	"advisor": {
		"show": cli.AdvisorShowCommand,
		"set":  cli.AdvisorSetCommand,
	},
}

var single = map[string]command{
	"review":    cli.ReviewCommand,
	"message":   cli.MessageCommand,
	"dashboard": cli.DashboardCommand,
	"graph":     cli.GraphCommand,
}

func main() {
	// .env is optional; it only feeds WARMPATH_* overrides.
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/warmpath/config.json)")
	dbPath := flag.String("db-path", "", "Database path (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("warmpath version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal("invalid log level", "err", err)
	}

	if args[0] == "config" {
		if err := configCommand(cfg, *configPath, args[1:]); err != nil {
			logger.Fatal("config failed", "err", err)
		}
		return
	}

	if err := run(cfg, logger, args); err != nil {
		if errors.Is(err, workspace.ErrPersistence) {
			logger.Warn("change applied but not saved", "err", err)
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger, args []string) error {
	backend, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close storage", "err", err)
		}
	}()

	cmd, rest := args[0], args[1:]
	if cmd == "sync" {
		return cli.SyncCommand(backend, os.Stdout, rest)
	}

	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}
	ws := workspace.Open(storage.New(backend, logger), opts, logger)

	switch cmd {
	case "mcp":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.MCPCommand(ctx, ws, logger, version)
	case "tui":
		return tui.Run(ws)
	}

	if fn, ok := single[cmd]; ok {
		return fn(ws, os.Stdout, rest)
	}

	group, ok := groups[cmd]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
	if len(rest) == 0 {
		return fmt.Errorf("%s requires a subcommand: %s", cmd, subcommandNames(group))
	}
	fn, ok := group[rest[0]]
	if !ok {
		return fmt.Errorf("unknown %s command: %s (valid: %s)", cmd, rest[0], subcommandNames(group))
	}
	return fn(ws, os.Stdout, rest[1:])
}

func openBackend(cfg *config.Config, logger *log.Logger) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendCharm:
		client, err := charm.NewClient(cfg.Charm())
		if err != nil {
			return nil, fmt.Errorf("failed to open charm kv: %w", err)
		}
		logger.Debug("using charm backend", "host", cfg.CharmHost)
		return client, nil
	default:
		kv, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		logger.Debug("using sqlite backend", "path", cfg.DBPath)
		return kv, nil
	}
}

func engineOptions(cfg *config.Config) (pipeline.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return pipeline.Options{}, err
	}
	sla, err := cfg.SLA()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{SLA: sla, Location: loc}, nil
}

func configCommand(cfg *config.Config, path string, args []string) error {
	if len(args) > 0 && args[0] == "init" {
		if path == "" {
			path = config.Path()
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", path)
		return nil
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func subcommandNames(group map[string]command) string {
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

func printUsage() {
	fmt.Printf(`warmpath v%s - Warm introduction pipeline for advisors

USAGE:
  warmpath [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/warmpath/config.json)
  --db-path <path>       Database path (default: ~/.local/share/warmpath/warmpath.db)
  --log-level <level>    debug, info, warn, error

COMMANDS:
  clients add|list|delete        Manage the client roster
    --name <name>                  Client name (required for add)
    --query <text>                 Search clients (list)

  prospects import|list          A client's network
    --client <id> --file <json>    Import an exported network

  review                         Record a client's review session
    --client <id> --file <json>    Entries: prospect_id|prospect, response, note
                                   strong → Client Agreed, casual → Identified, skip → nothing

  referrals list                 List referrals (--client, --stage, --stale)
  referrals show <id>            Referral details and open tasks
  referrals stage <id> --stage <stage>
  referrals advance <id> [--back]
  referrals update <id>          --note, --email, --phone, --profile-url
  referrals remove <id>          Remove a referral (tasks are kept)

  tasks list                     Open tasks (--referral, --overdue)
  tasks add                      --referral <id> --title <text> [--type] [--due-days]
  tasks done <id>                Complete a task

  templates list|reset           Message templates
  templates import <yaml>        Merge a YAML template pack
  templates export <yaml|->      Write the library as YAML

  advisor show|set               Advisor profile (--name, --value-prop, --calendar-link)
  message --referral <id>        Render a message (--template <id>, --check)

  dashboard                      Pipeline dashboard
  graph                          Graphviz pipeline graph (--output, --client)
  tui                            Interactive board
  mcp                            Start MCP server (for Claude Desktop integration)
  sync status|now|wipe           Charm sync (charm backend only)
  config [init]                  Show effective config, or write it

STAGES:
  Identified (7d) → Client Agreed (3d) → Intro Sent (7d) → Meeting Booked (14d) → Outcome

EXAMPLES:
  warmpath clients add --name "Alice Client"
  warmpath prospects import --client <id> --file network.json
  warmpath review --client <id> --file review.json
  warmpath referrals list --stale
  warmpath message --referral <id> --template tpl-ask-intro

`, version)
}
