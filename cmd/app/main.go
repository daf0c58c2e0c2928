package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	cblog "github.com/charmbracelet/log"

	"github.com/sessionaut/sessionaut/pkg/api"
	"github.com/sessionaut/sessionaut/pkg/config"
	"github.com/sessionaut/sessionaut/pkg/model"
	"github.com/sessionaut/sessionaut/pkg/theme"
	"github.com/sessionaut/sessionaut/pkg/trust"
)

// appVersion is the sessionaut version shown in --version output.
// Override at build time: go build -ldflags "-X main.appVersion=1.2.0"
var appVersion = "dev"

// Color definitions for help output
var (
	helpTitleColor     = lipgloss.Color("14")
	helpSectionColor   = lipgloss.Color("11")
	helpHighlightColor = lipgloss.Color("10")
	helpTextColor      = lipgloss.Color("15")
	helpDimColor       = lipgloss.Color("8")
	helpUrlColor       = lipgloss.Color("12")
)

// renderColorfulHelp creates a styled help output
func renderColorfulHelp(fs *flag.FlagSet) string {
	var help strings.Builder

	titleStyle := lipgloss.NewStyle().Foreground(helpTitleColor).Bold(true)
	help.WriteString(titleStyle.Render("sessionaut"))
	help.WriteString(" - Interactive terminal console for Backend.AI clusters\n\n")

	sectionStyle := lipgloss.NewStyle().Foreground(helpSectionColor).Bold(true)
	help.WriteString(sectionStyle.Render("USAGE"))
	help.WriteString("\n  ")
	help.WriteString(lipgloss.NewStyle().Foreground(helpTextColor).Render("sessionaut"))
	help.WriteString(lipgloss.NewStyle().Foreground(helpDimColor).Render(" [options]"))
	help.WriteString("\n\n")

	help.WriteString(sectionStyle.Render("OPTIONS"))
	help.WriteString("\n")

	// Capture flag defaults to a buffer
	var flagBuf strings.Builder
	fs.SetOutput(&flagBuf)
	fs.PrintDefaults()

	for _, line := range strings.Split(flagBuf.String(), "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "  -") {
			parts := strings.Fields(line)
			if len(parts) >= 1 {
				help.WriteString("  ")
				help.WriteString(lipgloss.NewStyle().Foreground(helpHighlightColor).Render(parts[0]))
				if len(parts) > 1 {
					help.WriteString(" " + lipgloss.NewStyle().Foreground(helpTextColor).Render(strings.Join(parts[1:], " ")))
				}
				help.WriteString("\n")
			}
		} else if strings.HasPrefix(line, "    \t") {
			help.WriteString(lipgloss.NewStyle().Foreground(helpDimColor).Render(line))
			help.WriteString("\n")
		}
	}

	help.WriteString("\n")
	help.WriteString(sectionStyle.Render("CONFIGURATION"))
	help.WriteString("\n  • Cluster endpoints and keypairs live in ")
	help.WriteString(lipgloss.NewStyle().Foreground(helpHighlightColor).Render("~/.config/sessionaut/clusters.yaml"))
	help.WriteString("\n  • ")
	help.WriteString(lipgloss.NewStyle().Foreground(helpHighlightColor).Render("BACKEND_ENDPOINT / BACKEND_ACCESS_KEY / BACKEND_SECRET_KEY"))
	help.WriteString(lipgloss.NewStyle().Foreground(helpTextColor).Render(" override the config file"))
	help.WriteString("\n\n")

	help.WriteString("For more information, visit: ")
	help.WriteString(lipgloss.NewStyle().Foreground(helpUrlColor).Underline(true).Render("https://github.com/sessionaut/sessionaut"))
	help.WriteString("\n")

	return help.String()
}

func main() {
	// Set up logging to file
	setupLogging()

	var (
		cfgPathFlag    string
		clusterFlag    string
		caCertFlag     string
		caPathFlag     string
		clientCertFlag string
		clientKeyFlag  string
		themeFlag      string
		showVersion    bool
		showHelp       bool
	)
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&showVersion, "version", false, "Show version information and exit")
	fs.BoolVar(&showHelp, "help", false, "Show help information and exit")
	fs.StringVar(&cfgPathFlag, "config", "", "Path to the cluster configuration file")
	fs.StringVar(&clusterFlag, "cluster", "", "Name of the cluster to connect to")
	// TLS trust flags
	fs.StringVar(&caCertFlag, "ca-cert", "", "Path to CA certificate bundle (PEM format)")
	fs.StringVar(&caPathFlag, "ca-path", "", "Directory containing CA certificates (*.pem, *.crt)")
	fs.StringVar(&clientCertFlag, "client-cert", "", "Path to client certificate file (PEM format)")
	fs.StringVar(&clientKeyFlag, "client-cert-key", "", "Path to client certificate private key file (PEM format)")
	fs.StringVar(&themeFlag, "theme", "", fmt.Sprintf("UI theme preset (%s)", strings.Join(theme.Names(), ", ")))

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			showHelp = true
		} else {
			fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
			os.Exit(1)
		}
	}

	if showVersion {
		fmt.Println(appVersion)
		return
	}
	if showHelp {
		fmt.Print(renderColorfulHelp(fs))
		return
	}

	setupTLSTrust(caCertFlag, caPathFlag, clientCertFlag, clientKeyFlag)

	appConfig, err := config.LoadAppConfig()
	if err != nil {
		cblog.With("component", "app").Warn("Could not load config, using defaults", "err", err)
		appConfig = config.GetDefaultConfig()
	}

	// Override theme from CLI flag if provided
	if themeFlag != "" {
		appConfig.Appearance.Theme = themeFlag
	}
	applyTheme(appConfig)

	server, err := loadClusterConfig(cfgPathFlag, clusterFlag)
	if err != nil {
		cblog.With("component", "app").Error("Could not load cluster config", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nConfigure a cluster in %s or set BACKEND_ENDPOINT, BACKEND_ACCESS_KEY and BACKEND_SECRET_KEY.\n",
			config.GetConfigPath())
		os.Exit(1)
	}
	cblog.With("component", "app").Info("Loaded cluster config", "endpoint", server.Endpoint)

	m := NewModel(server, appConfig)

	p := tea.NewProgram(m)

	// Store program pointer for terminal hand-off (pager and attach)
	m.SetProgram(p)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging configures logging to write to a file instead of stdout
func setupLogging() {
	f, err := os.CreateTemp("", "sessionaut-*.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create temp log file: %v\n", err)
		return
	}
	_ = os.Setenv("SESSIONAUT_LOG_FILE", f.Name())

	// Standard library log to the same file for any remaining log.Printf
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logger := cblog.NewWithOptions(f, cblog.Options{ReportTimestamp: true})
	switch strings.ToUpper(os.Getenv("SESSIONAUT_LOG_LEVEL")) {
	case "DEBUG":
		logger.SetLevel(cblog.DebugLevel)
	case "WARN":
		logger.SetLevel(cblog.WarnLevel)
	case "ERROR":
		logger.SetLevel(cblog.ErrorLevel)
	case "FATAL":
		logger.SetLevel(cblog.FatalLevel)
	default:
		logger.SetLevel(cblog.InfoLevel)
	}
	cblog.SetDefault(logger)

	cblog.With("component", "app").Info("sessionaut started", "logFile", f.Name())
}

// loadClusterConfig resolves the cluster to connect to and converts it to a
// server configuration
func loadClusterConfig(overridePath, clusterName string) (*model.Server, error) {
	var (
		cfg *config.ClusterConfig
		err error
	)
	if overridePath != "" {
		cfg, err = config.ReadClusterConfigFromPath(overridePath)
	} else {
		cfg, err = config.ReadClusterConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cluster config: %w", err)
	}

	if clusterName != "" {
		if err := cfg.SetCurrentCluster(clusterName); err != nil {
			return nil, err
		}
	}

	return cfg.ToServerConfig()
}

// setupTLSTrust configures TLS trust using the trust package
func setupTLSTrust(caCertFile, caCertDir, clientCertFile, clientKeyFile string) {
	// Only configure custom TLS trust when flags or environment ask for it
	if caCertFile == "" && caCertDir == "" && clientCertFile == "" && clientKeyFile == "" &&
		os.Getenv("SSL_CERT_FILE") == "" && os.Getenv("SSL_CERT_DIR") == "" {
		return
	}

	opts := trust.Options{
		CACertFile:     caCertFile,
		CACertDir:      caCertDir,
		ClientCertFile: clientCertFile,
		ClientKeyFile:  clientKeyFile,
		MinTLS:         tls.VersionTLS12,
	}

	pool, err := trust.LoadPool(opts)
	if err != nil {
		cblog.With("component", "tls").Error("Failed to load certificate pool", "err", err)
		fmt.Fprintf(os.Stderr, "TLS configuration failed: %v. Hint: Use --ca-cert or --ca-path to add trusted CAs, or install your CA in the OS trust store\n", err)
		os.Exit(1)
	}

	var clientCert *tls.Certificate
	if clientCertFile != "" && clientKeyFile != "" {
		cblog.With("component", "tls").Info("Loading client certificate for mutual TLS authentication",
			"cert", clientCertFile, "key", clientKeyFile)
		clientCert, err = trust.LoadClientCertificate(clientCertFile, clientKeyFile)
		if err != nil {
			cblog.With("component", "tls").Error("Failed to load client certificate", "err", err)
			fmt.Fprintf(os.Stderr, "Client certificate configuration failed: %v. Hint: Ensure --client-cert and --client-cert-key point to valid certificate files\n", err)
			os.Exit(1)
		}
	} else if clientCertFile != "" || clientKeyFile != "" {
		cblog.With("component", "tls").Warn("Incomplete client certificate configuration - both --client-cert and --client-cert-key are required")
		fmt.Fprintf(os.Stderr, "Warning: Both --client-cert and --client-cert-key must be provided for client certificate authentication\n")
	}

	httpClient := trust.NewHTTP(pool, clientCert, opts.MinTLS)
	api.SetHTTPClient(httpClient)

	cblog.With("component", "tls").Info("TLS trust configured",
		"caFile", caCertFile != "", "caDir", caCertDir != "", "clientCert", clientCert != nil)
}
