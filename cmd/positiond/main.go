package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/enzymefinance/maple-position/internal/config"
	"github.com/enzymefinance/maple-position/internal/logger"
	"github.com/enzymefinance/maple-position/internal/maple"
	"github.com/enzymefinance/maple-position/internal/monitor"
	"github.com/enzymefinance/maple-position/internal/position"
	"github.com/enzymefinance/maple-position/internal/state"
	"github.com/enzymefinance/maple-position/internal/token"
	"github.com/enzymefinance/maple-position/internal/wallet"
	"github.com/enzymefinance/maple-position/internal/web"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// main is the entry point for the Maple external position engine.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Maple position engine starting...")

	// Initialize Database Connection (audit trail)
	dbCfg := state.DBConfig{
		Host: config.DBHost, Port: int(config.DBPort),
		User: config.DBUser, Password: config.DBPassword,
		DBName: config.DBName, SSLMode: config.DBSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Chain Connectivity ---
	ethClient, err := ethclient.Dial(config.RPCEndpoint)
	if err != nil {
		log.Fatal().Err(err).Str("endpoint", config.RPCEndpoint).Msg("Ethereum RPC connection error")
	}
	defer ethClient.Close()
	log.Info().Str("endpoint", config.RPCEndpoint).Msg("Ethereum RPC connected")

	signer, err := wallet.NewSigningClient(ethClient, config.SignerKey, int64(config.ChainID))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize signing client")
	}

	// --- 3. Integration Clients ---
	registry, err := maple.NewLiveRegistry(signer, config.PoolFactoryAddress, config.RewardsFactoryAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Maple factory registry")
	}
	clients, err := maple.NewLiveClients(signer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Maple clients")
	}
	assets, err := token.NewLiveResolver(signer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token resolver")
	}

	// --- 4. Position Setup ---
	pos, err := position.New(position.Config{
		Address:  config.PositionAddress,
		Vault:    config.VaultAddress,
		Registry: registry,
		Clients:  clients,
		Assets:   assets,
		Events:   state.NewRecorder(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create external position")
	}

	positions := position.NewRegistry()
	if err := positions.Add(pos); err != nil {
		log.Fatal().Err(err).Msg("Failed to register position")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- 5. Web Server ---
	webServer := web.NewWebServer(config.WebServerPort, positions)
	go func() {
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 6. Valuation Monitor ---
	mon, err := monitor.New(monitor.Config{Positions: positions})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create valuation monitor")
	}
	go mon.RunLoop(ctx, config.SnapshotInterval)

	// --- 7. Shutdown Handling ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received, stopping...")
	cancel()
}
