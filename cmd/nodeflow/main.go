// Package main provides the nodeflow CLI: inspect and exercise session
// documents stored as files or in a configured document store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pyiron/nodeflow/pkg/nodeflow"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Optional .env for store configuration; absence is fine.
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("nodeflow %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
	case "inspect":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		if err := inspect(context.Background(), log, os.Args[2]); err != nil {
			log.Fatal().Err(err).Msg("inspect failed")
		}
	case "run":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		if err := run(context.Background(), log, os.Args[2]); err != nil {
			log.Fatal().Err(err).Msg("run failed")
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("nodeflow - node-graph runtime")
	fmt.Println("usage:")
	fmt.Println("  nodeflow version")
	fmt.Println("  nodeflow inspect <session-file>")
	fmt.Println("  nodeflow run <session-file>")
	fmt.Println("environment:")
	fmt.Println("  NODEFLOW_STORE    memory | sqlite | postgres (default memory)")
	fmt.Println("  NODEFLOW_SQLITE   sqlite database path")
	fmt.Println("  NODEFLOW_PG_URL   postgres connection string")
}

// inspect loads a session file and reports its structure.
func inspect(ctx context.Context, log zerolog.Logger, path string) error {
	s, err := loadSessionFile(path)
	if err != nil {
		return err
	}
	for _, sc := range s.Scripts() {
		nodes := sc.Flow.Nodes()
		conns := sc.Flow.Connections()
		log.Info().
			Str("script", sc.Title).
			Str("mode", string(sc.Flow.Mode())).
			Int("nodes", len(nodes)).
			Int("connections", len(conns)).
			Msg("script")
		for _, n := range nodes {
			log.Info().
				Str("class", n.Class.Identifier()).
				Str("gid", n.GlobalID).
				Int("inputs", len(n.Inputs)).
				Int("outputs", len(n.Outputs)).
				Msg("node")
		}
	}
	return nil
}

// run loads a session file, re-triggers every source node (nodes without
// inbound connections) so values propagate through the graph, prints the
// resulting output values, and saves the session to the configured store.
func run(ctx context.Context, log zerolog.Logger, path string) error {
	s, err := loadSessionFile(path)
	if err != nil {
		return err
	}
	for _, sc := range s.Scripts() {
		for _, n := range sc.Flow.Nodes() {
			if hasInbound(n) {
				continue
			}
			if err := n.Update(-1); err != nil {
				log.Error().Err(err).Str("class", n.Class.Identifier()).Msg("computation failed")
				return err
			}
		}
		for _, n := range sc.Flow.Nodes() {
			for i, out := range n.Outputs {
				if out.Type != "data" {
					continue
				}
				log.Info().
					Str("script", sc.Title).
					Str("class", n.Class.Identifier()).
					Int("output", i).
					Interface("value", out.Val).
					Msg("output")
			}
		}
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := nodeflow.SaveSession(ctx, store, s); err != nil {
		return err
	}
	log.Info().Str("id", s.ID).Msg("session saved")
	return nil
}

func hasInbound(n *nodeflow.Node) bool {
	for _, p := range n.Inputs {
		if len(p.Connections()) > 0 {
			return true
		}
	}
	return false
}
