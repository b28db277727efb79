// Command randomx-worker runs the RandomX proof-of-work pool
// supervisor: it loads setup/runtime config, brings up a population of
// CPU-bound hashing workers, and drives them through capacity changes,
// key-block rotation, and shutdown. See SPEC_FULL.md for the full
// design; this file mirrors the teacher's cmd/geth-style main() shape
// (load config -> install signal handler -> build subsystem -> run).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/boneyard93501/randomx-controller/internal/config"
	"github.com/boneyard93501/randomx-controller/internal/hasher"
	"github.com/boneyard93501/randomx-controller/internal/keyblock"
	"github.com/boneyard93501/randomx-controller/internal/pidfile"
	"github.com/boneyard93501/randomx-controller/internal/puzzle"
	"github.com/boneyard93501/randomx-controller/internal/rxlog"
	"github.com/boneyard93501/randomx-controller/internal/signer"
	"github.com/boneyard93501/randomx-controller/internal/supervisor"
)

const (
	logPath         = "./logs/log.txt"
	pidPath         = "./pid.json"
	setupCfgPath    = "./data/randomx_cfg.json"
	runtimeCfgPath  = "./data/runtime_cfg.json"
	solutionDir     = "./puzzle-solutions"
	initialKeyBlock = 1
	solutionBuffer  = 256
)

func main() {
	if err := pidfile.Remove(pidPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to remove stale pid file: %v\n", err)
	}
	if err := pidfile.Write(pidPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write pid file: %v\n", err)
		os.Exit(1)
	}

	logFile, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log := rxlog.New("component", "main")

	setupCfg, err := config.LoadSetup(setupCfgPath)
	if err != nil {
		log.Crit("invalid setup config, aborting", "err", err)
		os.Exit(1)
	}
	log.Info("setup config loaded", "num_cores", setupCfg.NumCores, "threads_per_core", setupCfg.ThreadsPerCore, "difficulty", setupCfg.Difficulty)

	keyPair := loadOrGenerateKeyPair(setupCfg, log)
	peerID := keyPair.PeerID()
	log.Info("keypair ready", "peer_id", peerID)

	sigCh := installSignalHandler()

	sup := supervisor.New(supervisor.Config{
		Setup:          setupCfg,
		RuntimeCfgPath: runtimeCfgPath,
		Oracle:         keyblock.NewMockOracle(initialKeyBlock),
		Signer:         keyPair,
		PeerID:         peerID,
		HasherFactory:  hasher.RandomXFactory{},
		Sink:           puzzle.NewSink(solutionDir),
		SolutionBuffer: solutionBuffer,
	}, sigCh)

	if err := sup.Startup(); err != nil {
		log.Crit("startup failed, aborting", "err", err)
		os.Exit(1)
	}
	log.Info("setup done")

	sup.Run()

	log.Info("done and done, exiting main")
}

func setupLogging() (*os.File, error) {
	if err := os.MkdirAll("./logs", 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	rxlog.SetOutput(rxlog.MultiWriter(f, rxlog.TerminalWriter(os.Stderr.Fd())))
	return f, nil
}

// loadOrGenerateKeyPair builds the signing keypair from the setup
// config's keypair field when present, or generates a fresh one for
// local/dev runs when it's empty.
func loadOrGenerateKeyPair(setupCfg *config.Setup, log rxlog.Logger) *signer.KeyPair {
	if setupCfg.Keypair != "" {
		return signer.FromBytes([]byte(setupCfg.Keypair))
	}
	log.Warn("no keypair configured, generating an ephemeral one for this run")
	kp, err := signer.Generate()
	if err != nil {
		log.Crit("failed to generate keypair, aborting", "err", err)
		os.Exit(1)
	}
	return kp
}

// installSignalHandler converts SIGINT/SIGTERM into a single
// coalesced, non-blocking notification channel (spec.md §6: "repeated
// signals coalesce").
func installSignalHandler() <-chan struct{} {
	raw := make(chan os.Signal, 1)
	signal.Notify(raw, os.Interrupt, syscall.SIGTERM)

	coalesced := make(chan struct{}, 1)
	go func() {
		for range raw {
			select {
			case coalesced <- struct{}{}:
			default:
			}
		}
	}()
	return coalesced
}
