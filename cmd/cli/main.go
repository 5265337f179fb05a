package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nickyhof/DemoDB"
	"github.com/nickyhof/DemoDB/conf"
	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/db"
	"github.com/nickyhof/DemoDB/logger"
	"github.com/nickyhof/DemoDB/ps"
	"github.com/nickyhof/DemoDB/service"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

const historyLimit = 1000

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the CLI state
type CLI struct {
	service     *service.Service
	session     *db.Session
	conn        service.DatabaseConnection
	s3          *ps.S3Config
	history     []string
	historyFile string
	out         io.Writer
}

func main() {
	configPath := flag.String("config", "", "Path to an ini config file")
	backend := flag.String("backend", "", "Backend URL (demo mode if empty or unreachable)")
	database := flag.String("database", "", "Initial database")
	seed := flag.String("seed", "", "Seed JSON: path, file://, http(s):// or s3:// URL")
	sqlFile := flag.String("sqlFile", "", "SQL file to execute (non-interactive)")
	userName := flag.String("name", "DemoDB", "User name recorded in the journal")
	userEmail := flag.String("email", "cli@demodb.local", "User email recorded in the journal")
	logLevel := flag.String("logLevel", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := conf.Load(*configPath)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.BackendURL = *backend
	}
	if *database != "" {
		cfg.Database = *database
	}
	if *seed != "" {
		cfg.Seed.Source = *seed
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := logger.InitLogger(cfg.LogConfig()); err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}

	printBanner()

	instance, err := DemoDB.OpenWithOptions(context.Background(), DemoDB.Options{
		SeedSource: cfg.Seed.Source,
		S3:         &cfg.Seed.S3,
		Journal:    cfg.Journal,
	})
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}

	engine := instance.Engine(core.Identity{
		Name:  *userName,
		Email: *userEmail,
	})

	cli := NewCLI(service.New(engine, cfg.ServiceConfig()), service.DatabaseConnection{Database: cfg.Database}, os.Stdout)
	cli.s3 = &cfg.Seed.S3
	cli.historyFile = getHistoryPath()
	cli.session.StopOnError = cfg.StopOnError
	cli.loadHistory()
	cli.connect(context.Background())

	if *sqlFile != "" {
		if err := cli.importFile(context.Background(), *sqlFile); err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	cli.run(context.Background(), os.Stdin)
	cli.saveHistory()
}

func NewCLI(svc *service.Service, conn service.DatabaseConnection, out io.Writer) *CLI {
	cli := &CLI{
		service: svc,
		conn:    conn,
		history: make([]string, 0),
		out:     out,
	}
	executor := db.ExecutorFunc(func(ctx context.Context, query string, database string) db.QueryResult {
		c := cli.conn
		c.Database = database
		return cli.service.ExecuteQuery(ctx, query, c)
	})
	cli.session = db.NewSession(executor, conn.Database)
	return cli
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("DemoDB v%s", Version)
	padding := max(bannerWidth-len(versionLine)-2, 0)
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║   In-memory demo SQL engine           ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

func (cli *CLI) printf(format string, args ...any) {
	fmt.Fprintf(cli.out, format, args...)
}

func (cli *CLI) fail(err error) {
	cli.printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
}

// connect runs the connection handshake and reports the mode.
func (cli *CLI) connect(ctx context.Context) {
	status := cli.service.TestConnection(ctx, cli.conn)
	if !status.Connected {
		cli.printf("%s✗ %s%s\n", ErrorColor, status.Error, ResetColor)
		return
	}
	cli.printf("%s✓ %s%s\n", SuccessColor, status.Message, ResetColor)
	if len(status.Databases) > 0 {
		cli.printf("Databases: %s\n", strings.Join(status.Databases, ", "))
	}
}

// run reads statements from in until EOF or .quit. Statements may span
// lines and end with a semicolon.
func (cli *CLI) run(ctx context.Context, in io.Reader) {
	reader := bufio.NewReader(in)
	var multiLineBuffer strings.Builder

	for {
		cli.printf("%s", cli.getPrompt(multiLineBuffer.Len() > 0))

		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			cli.printf("\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			return
		}

		input = strings.TrimSuffix(input, "\n")
		input = strings.TrimSuffix(input, "\r")
		if strings.TrimSpace(input) == "" {
			continue
		}

		if multiLineBuffer.Len() == 0 && strings.HasPrefix(strings.TrimSpace(input), ".") {
			if quit := cli.handleCommand(ctx, input); quit {
				cli.printf("%sGoodbye!%s\n", SuccessColor, ResetColor)
				return
			}
			continue
		}

		multiLineBuffer.WriteString(input)
		trimmed := strings.TrimSpace(multiLineBuffer.String())
		if !strings.HasSuffix(trimmed, ";") {
			multiLineBuffer.WriteString("\n")
			continue
		}
		multiLineBuffer.Reset()

		cli.addToHistory(trimmed)
		for _, statement := range db.SplitStatements(trimmed) {
			cli.session.Execute(ctx, statement).Render(cli.out)
		}
	}
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return fmt.Sprintf("%s   ...>%s ", PromptColor, ResetColor)
	}

	dbPart := ""
	if cli.session.Database != "" {
		dbPart = fmt.Sprintf(" (%s)", cli.session.Database)
	}
	return fmt.Sprintf("%sdemodb%s>%s ", PromptColor, dbPart, ResetColor)
}

// handleCommand runs a dot command and reports whether the CLI should exit.
func (cli *CLI) handleCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return false
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		return true

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".databases", ".dbs":
		cli.session.Execute(ctx, "SHOW DATABASES").Render(cli.out)

	case ".tables":
		database := cli.session.Database
		if len(parts) > 1 {
			database = strings.ToLower(parts[1])
		}
		if database == "" {
			cli.printf("%s✗ Usage: .tables <database>%s\n", ErrorColor, ResetColor)
			break
		}
		cli.service.ExecuteQuery(ctx, "SHOW TABLES", service.DatabaseConnection{Database: database}).Render(cli.out)

	case ".use":
		if len(parts) < 2 {
			cli.printf("%s✗ Usage: .use <database>%s\n", ErrorColor, ResetColor)
			break
		}
		cli.session.Execute(ctx, "USE "+parts[1]).Render(cli.out)

	case ".import":
		if len(parts) < 2 {
			cli.printf("%s✗ Usage: .import <file.sql>%s\n", ErrorColor, ResetColor)
			break
		}
		if err := cli.importFile(ctx, parts[1]); err != nil {
			cli.fail(err)
		}

	case ".export":
		if len(parts) < 2 {
			cli.printf("%s✗ Usage: .export <path|s3://bucket/key>%s\n", ErrorColor, ResetColor)
			break
		}
		if err := cli.export(ctx, parts[1]); err != nil {
			cli.fail(err)
		}

	case ".reset", ".connect":
		cli.connect(ctx)

	case ".status":
		cli.printStatus()

	case ".journal":
		limit := 10
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				cli.printf("%s✗ Usage: .journal [n]%s\n", ErrorColor, ResetColor)
				break
			}
			limit = n
		}
		if err := cli.printJournal(limit); err != nil {
			cli.fail(err)
		}

	case ".restore":
		if len(parts) < 2 {
			cli.printf("%s✗ Usage: .restore <journal id>%s\n", ErrorColor, ResetColor)
			break
		}
		target, err := cli.service.Engine().Store().Restore(cli.service.Engine().Identity(), parts[1])
		if err != nil {
			cli.fail(err)
			break
		}
		cli.printf("%s✓ Restored to %s%s\n", SuccessColor, target, ResetColor)

	case ".history":
		cli.printHistory()

	case ".clear", ".cls":
		cli.printf("\033[H\033[2J")

	case ".version":
		cli.printf("DemoDB version %s\n", Version)

	default:
		cli.printf("%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, parts[0], ResetColor)
	}
	return false
}

func (cli *CLI) printHelp() {
	cli.printf("\n%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	cli.printf("  .help, .h        Show this help message\n")
	cli.printf("  .quit, .exit     Exit the CLI\n")
	cli.printf("  .databases       List all databases\n")
	cli.printf("  .tables [db]     List tables in a database\n")
	cli.printf("  .use <db>        Set the current database\n")
	cli.printf("  .import <file>   Execute SQL statements from a file\n")
	cli.printf("  .export <path>   Write the demo server as JSON (local path or s3://)\n")
	cli.printf("  .reset           Reconnect; in demo mode this restores the seed\n")
	cli.printf("  .status          Show mode, database and state fingerprint\n")
	cli.printf("  .journal [n]     Show the last n journaled changes\n")
	cli.printf("  .restore <id>    Restore the state recorded by a journal entry\n")
	cli.printf("  .history         Show command history\n")
	cli.printf("  .clear           Clear the screen\n")
	cli.printf("  .version         Show version info\n")
	cli.printf("\n%s%sSQL Commands:%s\n", BoldColor, PromptColor, ResetColor)
	cli.printf("  SHOW DATABASES; CREATE DATABASE <name>; DROP DATABASE <name>; USE <name>;\n")
	cli.printf("  SHOW TABLES; CREATE TABLE <t> (<col> <type> ..., PRIMARY KEY (<col>));\n")
	cli.printf("  DROP TABLE <t>; TRUNCATE TABLE <t>; RENAME TABLE <old> TO <new>;\n")
	cli.printf("  ALTER TABLE <t> ADD COLUMN <col> <type>; ALTER TABLE <t> DROP COLUMN <col>;\n")
	cli.printf("  SELECT * FROM <t> [ORDER BY <col> ASC|DESC] [LIMIT n [OFFSET m]];\n")
	cli.printf("  INSERT INTO <t> [(<cols>)] VALUES (<vals>);\n")
	cli.printf("  UPDATE <t> SET <col>=<val>[, ...] WHERE <col>=<val>;\n")
	cli.printf("  DELETE FROM <t> WHERE <col> IN (<ids>);\n\n")
}

func (cli *CLI) printStatus() {
	mode := "backend"
	if cli.service.IsDemoMode() {
		mode = "demo"
	}
	database := cli.session.Database
	if database == "" {
		database = "(none)"
	}
	cli.printf("Mode:        %s\n", mode)
	cli.printf("Database:    %s\n", database)

	store := cli.service.Engine().Store()
	if fingerprint, err := store.Fingerprint(); err == nil {
		cli.printf("Fingerprint: %s\n", fingerprint)
	}
	if journal := store.Journal(); journal != nil {
		if latest := journal.Latest(); latest.Id != "" {
			cli.printf("Last change: %s\n", latest)
		}
	}
}

func (cli *CLI) printJournal(limit int) error {
	journal := cli.service.Engine().Store().Journal()
	if journal == nil {
		return ps.ErrJournalDisabled
	}
	transactions, err := journal.History(limit)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		cli.printf("No journaled changes\n")
		return nil
	}
	for _, txn := range transactions {
		cli.printf("  %s\n", txn)
	}
	return nil
}

func (cli *CLI) export(ctx context.Context, path string) error {
	server, ok := cli.service.MockServerState()
	if !ok {
		return errors.New("export is only available in demo mode")
	}
	if err := ps.ExportSnapshot(ctx, path, server, cli.s3); err != nil {
		return err
	}
	cli.printf("%s✓ Exported %d databases to %s%s\n", SuccessColor, len(server), path, ResetColor)
	return nil
}

func (cli *CLI) addToHistory(cmd string) {
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)
	if len(cli.history) > historyLimit {
		cli.history = cli.history[len(cli.history)-historyLimit:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		cli.printf("No command history\n")
		return
	}

	start := max(len(cli.history)-20, 0)
	for i := start; i < len(cli.history); i++ {
		cli.printf("  %3d  %s\n", i+1, strings.ReplaceAll(cli.history[i], "\n", " "))
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".demodb_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	start := max(len(cli.history)-historyLimit, 0)
	for i := start; i < len(cli.history); i++ {
		_, _ = file.WriteString(strings.ReplaceAll(cli.history[i], "\n", " ") + "\n")
	}
}

// importFile runs the statements of a SQL file through the session,
// printing one line per statement.
func (cli *CLI) importFile(ctx context.Context, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "failed to read file")
	}

	successCount := 0
	errorCount := 0
	for i, stmt := range db.SplitStatements(string(data)) {
		result := cli.session.Execute(ctx, stmt)
		if !result.Success {
			cli.printf("%s[%d] ✗ %s%s\n", ErrorColor, i+1, db.Truncate(stmt, 50), ResetColor)
			cli.printf("      Error: %s\n", result.Error)
			errorCount++
			if cli.session.StopOnError {
				break
			}
			continue
		}

		successCount++
		detail := ""
		switch result.Type() {
		case db.QueryResultType:
			detail = fmt.Sprintf(" (%d rows)", len(result.Data))
		default:
			if result.Message != "" {
				detail = " (" + result.Message + ")"
			}
		}
		cli.printf("%s[%d] ✓ %s%s%s\n", SuccessColor, i+1, db.Truncate(stmt, 50), detail, ResetColor)
	}

	cli.printf("\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)
	return nil
}
