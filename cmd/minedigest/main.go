// Package main provides the CLI entrypoint for minedigest.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/minedigest/internal/config"
	"github.com/verte-zerg/minedigest/internal/digest"
	"github.com/verte-zerg/minedigest/internal/ledger"
	"github.com/verte-zerg/minedigest/internal/reportui"
)

const (
	defaultOutDir       = "minedigest-out"
	defaultStatusLimit  = 10
	defaultInspectLines = 5
	inspectTextWidth    = 60
)

var (
	configPath string
	logLevel   string
	verbose    bool

	sendYesterday    bool
	sendDaysAgo      int
	sendForce        bool
	sendCheckMissing bool
	sendDryRun       bool
	sendOut          string

	maxDaysBack int

	previewDaysAgo int
	statusLimit    int
	inspectLines   int
	legacyDir      string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "minedigest",
		Short:         "Daily mining activity digest for Discord",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSendCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addSendFlags(rootCmd)

	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newImportLegacyCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the daily report (default command)",
		Args:  cobra.NoArgs,
		RunE:  runSendCmd,
	}
	addSendFlags(cmd)
	return cmd
}

func addSendFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&sendYesterday, "yesterday", false, "report yesterday (same as --days-ago 1)")
	cmd.Flags().IntVar(&sendDaysAgo, "days-ago", 0, "report the day N days before today")
	cmd.Flags().BoolVar(&sendForce, "force", false, "send even if the day was already reported")
	cmd.Flags().BoolVar(&sendCheckMissing, "check-missing", false, "send every unreported day in the lookback window")
	cmd.Flags().IntVar(&maxDaysBack, "max-days-back", config.DefaultMaxDaysBack, "lookback window for --check-missing")
	cmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "write the report to --out instead of sending it")
	cmd.Flags().StringVar(&sendOut, "out", defaultOutDir, "output directory for --dry-run")
}

func runSendCmd(cmd *cobra.Command, _ []string) error {
	daysAgo, err := resolveDaysAgo(cmd)
	if err != nil {
		return err
	}
	if sendForce && sendCheckMissing {
		return fmt.Errorf("--force cannot be combined with --check-missing")
	}
	force := sendForce
	if ciDefaults(cmd) {
		daysAgo, force = 1, true
	}

	mode := modeSend
	if sendDryRun {
		mode = modeDryRun
	}
	a, err := openApp(cmd, mode)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if sendCheckMissing {
		summary, runErr := a.engine.CatchUp(ctx, a.settings.MaxDaysBack)
		for _, res := range summary.Days {
			printDay(out, res)
		}
		printfOut(out, "sent=%d already-sent=%d skipped=%d unavailable=%d failed=%d\n",
			summary.Sent, summary.AlreadySent, summary.Skipped, summary.Unavailable, summary.Failed)
		a.notifyFailure(summary.DaysWith(digest.OutcomeFailed), summary.DaysWith(digest.OutcomeUnavailable))
		return runErr
	}

	if force && !sendForce {
		a.logger.Info("running in GitHub Actions mode", "days_ago", daysAgo)
	}
	res, runErr := a.engine.RunDay(ctx, daysAgo, force)
	printDay(out, res)
	switch res.Outcome {
	case digest.OutcomeFailed:
		a.notifyFailure([]string{res.Day}, nil)
	case digest.OutcomeUnavailable:
		a.notifyFailure(nil, []string{res.Day})
	}
	return runErr
}

func resolveDaysAgo(cmd *cobra.Command) (int, error) {
	if sendYesterday && cmd.Flags().Changed("days-ago") && sendDaysAgo != 1 {
		return 0, fmt.Errorf("--yesterday conflicts with --days-ago %d", sendDaysAgo)
	}
	if sendYesterday {
		return 1, nil
	}
	if sendDaysAgo < 0 {
		return 0, fmt.Errorf("--days-ago must be >= 0")
	}
	return sendDaysAgo, nil
}

// ciDefaults reports whether a bare run under GitHub Actions should send
// yesterday's report with force, as the scheduled workflow expects.
func ciDefaults(cmd *cobra.Command) bool {
	if !config.InGitHubActions(os.Getenv) || sendCheckMissing || sendYesterday {
		return false
	}
	return !cmd.Flags().Changed("days-ago")
}

func printDay(w io.Writer, res digest.DayResult) {
	line := fmt.Sprintf("%s  %-12s", res.Day, res.Outcome)
	if res.Stats.TotalChars > 0 {
		line += fmt.Sprintf("  %s chars", humanize.Comma(int64(res.Stats.TotalChars)))
	}
	if res.Err != nil {
		line += fmt.Sprintf("  (%v)", res.Err)
	}
	printfOut(w, "%s\n", strings.TrimRight(line, " "))
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent markers and which days are owed",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().IntVar(&statusLimit, "limit", defaultStatusLimit, "number of recent markers to list")
	cmd.Flags().IntVar(&maxDaysBack, "max-days-back", config.DefaultMaxDaysBack, "lookback window")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, modeReadOnly)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	markers, err := a.ledger.List(ctx, statusLimit)
	if err != nil {
		return fmt.Errorf("failed to list markers: %w", err)
	}
	printfOut(out, "Recent reports (%s):\n", a.settings.LedgerPath)
	if len(markers) == 0 {
		printfOut(out, "  none\n")
	}
	for _, m := range markers {
		printfOut(out, "  %s  sent %s  (%s, run %s)\n",
			m.Day, m.SentAt.Local().Format("2006-01-02 15:04"), humanize.Time(m.SentAt), m.RunID)
	}

	days, err := a.engine.Status(ctx, a.settings.MaxDaysBack)
	if err != nil {
		return fmt.Errorf("failed to check lookback: %w", err)
	}
	printfOut(out, "\nLast %d days:\n", a.settings.MaxDaysBack)
	owed := 0
	for _, d := range days {
		line := fmt.Sprintf("  %s  %-11s", d.Day, d.State)
		if d.Chars > 0 {
			line += fmt.Sprintf("  %s chars", humanize.Comma(int64(d.Chars)))
		}
		printfOut(out, "%s\n", strings.TrimRight(line, " "))
		if d.State == digest.StateOwed {
			owed++
		}
	}
	if owed > 0 {
		printfOut(out, "\n%d day(s) owed. Run: minedigest --check-missing\n", owed)
	}
	return nil
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Browse reports in the terminal without sending",
		Args:  cobra.NoArgs,
		RunE:  runPreviewCmd,
	}
	cmd.Flags().IntVar(&previewDaysAgo, "days-ago", 1, "day to open first")
	cmd.Flags().IntVar(&maxDaysBack, "max-days-back", config.DefaultMaxDaysBack, "how far back to browse")
	return cmd
}

func runPreviewCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, modeReadOnly)
	if err != nil {
		return err
	}
	defer a.close()

	model := reportui.NewModel(a.engine, previewDaysAgo, a.settings.MaxDaysBack)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run preview: %w", err)
	}
	return nil
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List event store tables and the newest lines",
		Args:  cobra.NoArgs,
		RunE:  runInspectCmd,
	}
	cmd.Flags().IntVar(&inspectLines, "lines", defaultInspectLines, "number of recent lines to show")
	return cmd
}

func runInspectCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, modeReadOnly)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	printfOut(out, "Event store: %s\n", a.source.Path())
	tables, err := a.source.Tables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	printfOut(out, "Tables: %s\n", strings.Join(tables, ", "))

	lines, err := a.source.Recent(ctx, inspectLines)
	if err != nil {
		return fmt.Errorf("failed to read recent lines: %w", err)
	}
	printfOut(out, "\nNewest %d lines:\n", len(lines))
	for _, l := range lines {
		printfOut(out, "  %s  %s  %s\n",
			l.OccurredAt.Local().Format("2006-01-02 15:04:05"),
			l.Source,
			runewidth.Truncate(strings.ReplaceAll(l.Text, "\n", " "), inspectTextWidth, "..."))
	}
	return nil
}

func newImportLegacyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Import last_report_YYYY-MM-DD.txt markers",
		Args:  cobra.NoArgs,
		RunE:  runImportLegacyCmd,
	}
	cmd.Flags().StringVar(&legacyDir, "dir", ".", "directory holding the legacy marker files")
	return cmd
}

func runImportLegacyCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, settings)
	if err != nil {
		return err
	}
	markers, err := ledger.Open(settings.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer func() {
		if cerr := markers.Close(); cerr != nil {
			logErrf("failed to close ledger: %v\n", cerr)
		}
	}()

	n, err := ledger.ImportLegacy(cmd.Context(), markers, legacyDir)
	if err != nil {
		return fmt.Errorf("failed to import legacy markers: %w", err)
	}
	logger.Info("legacy markers imported", "dir", legacyDir, "new", n)
	printfOut(cmd.OutOrStdout(), "Imported %d marker(s) from %s\n", n, legacyDir)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path, err := ensureConfigFile(configPath)
	if err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) (string, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return "", fmt.Errorf("failed to write config: %w", err)
		}
	}
	return path, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func isMissingConfig(err error) bool {
	return errors.Is(err, config.ErrMissing)
}

func printfOut(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		// Best-effort output.
		_ = err
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
