// Package cli provides the cobra command tree for insight.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// version is set by SetVersion from the build.
var version = "dev"

// Services wired in by main. Commands check for nil and fail with a
// "not configured" error so the tree stays usable in tests.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	documentService driving.DocumentService
	actionService   driving.AnswerActionService
	settingsService driving.SettingsService
	indexService    driving.IndexService
	watchService    driving.WatchService
)

// serverConfig holds the listen defaults for serve and mcp serve.
var serverConfig ServerConfig

// verbose enables debug logging.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Ask questions about your PDFs",
	Long: `insight answers questions about PDF documents with cited sources.

Ingest PDFs, then ask questions from the command line, the terminal UI,
the HTTP API or an MCP client. Answers cite the document and page each
claim comes from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

// Services groups the driving ports the commands use.
type Services struct {
	Ingest   driving.IngestService
	Query    driving.QueryService
	Document driving.DocumentService
	Actions  driving.AnswerActionService
	Settings driving.SettingsService
	Index    driving.IndexService
	Watch    driving.WatchService
}

// ServerConfig holds listen defaults for the long-running commands.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// SetServices installs the services used by all commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	documentService = s.Document
	actionService = s.Actions
	settingsService = s.Settings
	indexService = s.Index
	watchService = s.Watch
}

// SetSettingsService installs only the settings service. main uses this
// when the AI providers cannot start, so 'insight settings' still works.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetServerConfig sets the listen defaults for serve and mcp serve.
func SetServerConfig(cfg ServerConfig) {
	serverConfig = cfg
}

// SetVersion sets the version reported by 'insight version' and health checks.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
