package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dbpilot/internal/dbclient"
	"dbpilot/internal/domain"
	"dbpilot/internal/service"
	"dbpilot/internal/storage"
)

const appName = "dbpilot"

func main() {
	var (
		configPath string
		envFile    string
		logLevel   string
	)

	var (
		logger  *logrus.Logger
		db      *storage.DB
		session *service.Session
	)

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Command-line companion for the database administration core",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = setupLogging(logLevel)
			loadEnvironment(envFile, logger)

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.LogLevel != "" && logLevel == "" {
				logger = setupLogging(cfg.LogLevel)
			}

			dbPath := cfg.DBPath
			if dbPath == "" {
				if dbPath = os.Getenv("DBPILOT_DB_PATH"); dbPath == "" {
					dbPath, err = storage.DefaultPath(appName)
					if err != nil {
						return err
					}
				}
			}

			db, err = storage.New(dbPath)
			if err != nil {
				return err
			}
			logger.Debugf("catalog opened at %s", dbPath)

			session = service.NewSession(
				storage.NewConnectionStore(db),
				storage.NewSavedQueryStore(db),
			)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if session != nil {
				session.DisconnectAll()
			}
			if db != nil {
				db.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "path to .env file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		listCmd(&session),
		saveCmd(&session),
		deleteCmd(&session),
		pingCmd(&session, &logger),
		execCmd(&session, &logger),
		treeCmd(&session),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listCmd(session **service.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, err := (*session).ListConnections()
			if err != nil {
				return err
			}
			if len(configs) == 0 {
				fmt.Println("no stored connections")
				return nil
			}
			for _, c := range configs {
				database := c.Database
				if database == "" {
					database = "-"
				}
				fmt.Printf("%4d  %-20s  %-10s  %s@%s:%d/%s\n",
					c.ID, c.Name, c.Type, c.Username, c.Host, c.Port, database)
			}
			return nil
		},
	}
}

func saveCmd(session **service.Session) *cobra.Command {
	var (
		dbType   string
		host     string
		port     uint16
		username string
		password string
		database string
	)
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Create or update a stored connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseDatabaseType(dbType)
			if err != nil {
				return err
			}
			cfg := domain.ConnectionConfig{
				Name:     args[0],
				Type:     t,
				Host:     host,
				Port:     port,
				Username: username,
				Password: password,
				Database: database,
			}
			id, err := (*session).SaveConnection(&cfg)
			if err != nil {
				return err
			}
			fmt.Printf("saved %q with id %d\n", cfg.Name, id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dbType, "type", "t", "MySQL", "dialect (MySQL or PostgreSQL)")
	cmd.Flags().StringVarP(&host, "host", "H", "localhost", "server host")
	cmd.Flags().Uint16VarP(&port, "port", "P", 0, "server port (0 uses the dialect default)")
	cmd.Flags().StringVarP(&username, "user", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVarP(&database, "database", "d", "", "default database")
	return cmd
}

func deleteCmd(session **service.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*session).DeleteConnection(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %q\n", args[0])
			return nil
		},
	}
}

func pingCmd(session **service.Session, logger **logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "ping <id>",
		Short: "Open a stored connection and verify it responds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid connection id %q", args[0])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			start := time.Now()
			conn, err := (*session).Connect(ctx, id)
			if err != nil {
				return err
			}
			if err := conn.Ping(ctx); err != nil {
				return err
			}
			(*logger).Debugf("connected to %s", conn.Config().Name)
			fmt.Printf("%s is reachable (%s)\n", conn.Config().Name, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func execCmd(session **service.Session, logger **logrus.Logger) *cobra.Command {
	var stopOnError bool
	cmd := &cobra.Command{
		Use:   "exec <id> <sql...>",
		Short: "Run a SQL script on a stored connection",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid connection id %q", args[0])
			}
			script := strings.Join(args[1:], " ")

			ctx := cmd.Context()
			if _, err := (*session).Connect(ctx, id); err != nil {
				return err
			}

			results, err := (*session).ExecuteScript(ctx, script, dbclient.ExecOptions{StopOnError: stopOnError})
			if err != nil {
				return err
			}
			for i, res := range results {
				printResult(i+1, res, *logger)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "halt the script at the first failed statement")
	return cmd
}

func treeCmd(session **service.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <id> <database>",
		Short: "Print the object tree of one database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid connection id %q", args[0])
			}

			ctx := cmd.Context()
			conn, err := (*session).Connect(ctx, id)
			if err != nil {
				return err
			}

			node, err := (*session).BuildTree(ctx, conn.Config().PoolKey(), args[1])
			if err != nil {
				return err
			}
			printNode(node, 0)
			return nil
		},
	}
}

func printResult(n int, res domain.SqlResult, logger *logrus.Logger) {
	switch r := res.(type) {
	case *domain.QueryResult:
		fmt.Printf("-- statement %d (%d rows, %dms)\n", n, len(r.Rows), r.ElapsedMs)
		fmt.Println(strings.Join(r.Columns, "\t"))
		for _, row := range r.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = domain.CellText(cell)
			}
			fmt.Println(strings.Join(cells, "\t"))
		}
	case *domain.ExecResult:
		msg := r.Message
		if msg == "" {
			msg = "ok"
		}
		fmt.Printf("-- statement %d: %s (%d rows affected, %dms)\n", n, msg, r.RowsAffected, r.ElapsedMs)
	case *domain.ErrorResult:
		logger.Errorf("statement %d failed: %s", n, r.Message)
	}
}

func printNode(node domain.DbNode, depth int) {
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), node.Name)
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}
