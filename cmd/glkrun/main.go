// glkrun - runs a Glk interpreter speaking the JSON display protocol
//
// By default the demo interpreter talks to a display client over
// stdin/stdout, one JSON object per line. With --listen it serves each
// websocket connection its own session instead.
//
// Build: go build ./cmd/glkrun
// Usage:
//   glkrun [flags]                # stdio mode
//   glkrun --listen :4570        # websocket mode
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/glkrun/glk"
	"github.com/chazu/glkrun/manifest"
	"github.com/chazu/glkrun/server"
	"github.com/chazu/glkrun/storage"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	listen := flag.String("listen", "", "Serve sessions over websocket on this address instead of stdio")
	configPath := flag.String("config", "", "Directory containing glkrun.toml (default: search upward from cwd)")
	verbosity := flag.Int("verbosity", 0, "Log verbosity (0=errors only)")
	logPath := flag.String("log", "", "Log file path (default: stderr)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: glkrun [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the demo interpreter over the line-JSON display protocol.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glkrun                       # stdio, display client on the other end\n")
		fmt.Fprintf(os.Stderr, "  glkrun --listen :4570        # one session per websocket connection\n")
		fmt.Fprintf(os.Stderr, "  glkrun --config ./conf       # use ./conf/glkrun.toml\n")
	}
	flag.Parse()

	if *logPath != "" {
		commonlog.Configure(*verbosity, logPath)
	} else {
		commonlog.Configure(*verbosity, nil)
	}

	mf, err := loadManifest(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(mf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	sopts := []glk.SessionOption{
		glk.WithStore(store),
		glk.WithGridSize(mf.Session.GridWidth, mf.Session.GridHeight),
		glk.WithArgs(flag.Args()),
		glk.WithLimits(mf.Limits.MaxContent, mf.Limits.MaxWindows, mf.Limits.MaxDebug),
	}
	if len(mf.Session.Support) > 0 {
		sopts = append(sopts, glk.WithSupport(mf.Session.Support...))
	}

	if *listen != "" {
		srv := server.New(runDemo, server.WithSessionOptions(sopts...))
		if err := srv.ListenAndServe(*listen); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ch := server.NewStdioChannel(os.Stdin, os.Stdout)
	session := glk.NewSession(ch, sopts...)
	autosave := mf.AutosavePath()
	if autosave != "" {
		if err := restoreAutosave(session, autosave); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: autosave restore failed: %v\n", err)
		}
	}
	if err := runDemo(session); err != nil {
		fmt.Fprintf(os.Stderr, "Interpreter error: %v\n", err)
		os.Exit(1)
	}
	if autosave != "" {
		if err := saveAutosave(session, autosave); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: autosave failed: %v\n", err)
		}
	}
	session.Exit()
}

// restoreAutosave loads a prior session snapshot into the session. A
// missing snapshot file is not an error; a corrupt one is.
func restoreAutosave(session *glk.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	snap, err := glk.UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	return session.RestoreSnapshot(snap)
}

// saveAutosave writes the session's display state to the snapshot path.
func saveAutosave(session *glk.Session, path string) error {
	data, err := glk.MarshalSnapshot(session.SaveSnapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadManifest(path string) (*manifest.Manifest, error) {
	if path != "" {
		return manifest.Load(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return manifest.Default(), nil
	}
	mf, err := manifest.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if mf == nil {
		return manifest.Default(), nil
	}
	return mf, nil
}

func openStore(mf *manifest.Manifest) (storage.Store, error) {
	switch mf.Storage.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(mf.DatabasePath())
	default:
		return storage.NewDirStore(mf.StorageRoot())
	}
}
