package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sena-services/registry/ai"
	"github.com/sena-services/registry/internal/metrics"
	"github.com/sena-services/registry/internal/profile"
	"github.com/sena-services/registry/internal/version"
	"github.com/sena-services/registry/search"
	"github.com/sena-services/registry/seed"
	"github.com/sena-services/registry/server"
	"github.com/sena-services/registry/store"
	"github.com/sena-services/registry/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "registry",
	Short: `The registry catalog service. Search and browse reusable AI building blocks with semantic ranking.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// .env is only loaded for direct binary execution; service managers
		// provide the environment themselves.
		if !isRunningAsService() {
			_ = godotenv.Load()
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile, err := loadProfile()
		if err != nil {
			slog.Error("invalid configuration", "error", err)
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		storeInstance, err := openStore(ctx, instanceProfile)
		if err != nil {
			slog.Error("failed to open store", "error", err)
			return
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// SIGTERM is the graceful shutdown signal used by most process
		// managers, e.g. Kubernetes and systemd.
		signal.Notify(c, terminationSignals...)

		if err := s.Start(ctx); err != nil {
			slog.Error("failed to start server", "error", err)
			return
		}

		printGreetings(instanceProfile)

		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		<-ctx.Done()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog with the pre-defined agent roles and team types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		storeInstance, err := openStore(ctx, instanceProfile)
		if err != nil {
			return err
		}
		defer storeInstance.Close()
		return seed.New(storeInstance).Run(ctx)
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild search text and embeddings for every catalog item",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		storeInstance, err := openStore(ctx, instanceProfile)
		if err != nil {
			return err
		}
		defer storeInstance.Close()

		result, err := newSearcher(instanceProfile, storeInstance).RebuildIndex(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Reindexed %d items, %d embedded\n", result.Total, result.Embedded)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.StringFull())
	},
}

func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:             viper.GetString("mode"),
		Addr:             viper.GetString("addr"),
		Port:             viper.GetInt("port"),
		UNIXSock:         viper.GetString("unix-sock"),
		Data:             viper.GetString("data"),
		Driver:           viper.GetString("driver"),
		DSN:              viper.GetString("dsn"),
		InstanceURL:      viper.GetString("instance-url"),
		EmbeddingAPIKey:  viper.GetString("embedding-api-key"),
		EmbeddingBaseURL: viper.GetString("embedding-base-url"),
		EmbeddingModel:   viper.GetString("embedding-model"),
		Version:          version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func newSearcher(instanceProfile *profile.Profile, storeInstance *store.Store) *search.Searcher {
	embedder := ai.NewEmbeddingService(ai.ResolveEmbeddingConfig(instanceProfile))
	return search.NewSearcher(storeInstance, embedder, metrics.NewExporter())
}

func openStore(ctx context.Context, instanceProfile *profile.Profile) (*store.Store, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, err
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		return nil, err
	}
	return storeInstance, nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 28090)
	viper.SetDefault("data", ".")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("unix-sock", "", "path to the unix socket, overrides --addr and --port")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of the registry instance")
	rootCmd.PersistentFlags().String("embedding-api-key", "", "API key for the embedding provider")
	rootCmd.PersistentFlags().String("embedding-base-url", "", "base URL of the embedding provider")
	rootCmd.PersistentFlags().String("embedding-model", "", "embedding model name")

	for _, flag := range []string{
		"mode", "addr", "port", "unix-sock", "data", "driver", "dsn",
		"instance-url", "embedding-api-key", "embedding-base-url", "embedding-model",
	} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("registry")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	rootCmd.AddCommand(seedCmd, reindexCmd, versionCmd)
}

func printGreetings(instanceProfile *profile.Profile) {
	fmt.Printf("Registry %s started successfully!\n", instanceProfile.Version)

	if instanceProfile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
	}

	fmt.Printf("Database driver: %s\n", instanceProfile.Driver)
	fmt.Printf("Mode: %s\n", instanceProfile.Mode)

	if len(instanceProfile.UNIXSock) == 0 {
		if len(instanceProfile.Addr) == 0 {
			fmt.Printf("Server running on port %d\n", instanceProfile.Port)
		} else {
			fmt.Printf("Server running on %s:%d\n", instanceProfile.Addr, instanceProfile.Port)
		}
	} else {
		fmt.Printf("Server running on unix socket: %s\n", instanceProfile.UNIXSock)
	}
}

// isRunningAsService detects if the process is running under systemd.
func isRunningAsService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
