// Command sessionctl drives the client-side session lifecycle against the
// external identity provider: register, login, logout and whoami. The session
// token is persisted under the user's home directory so whoami works across
// invocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/negocehub/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/negocehub/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/negocehub/marketplace-api/internal/infrastructure/provider"
	"github.com/negocehub/marketplace-api/pkg/logger"
	"github.com/negocehub/marketplace-api/pkg/session"
)

const waitTimeout = 15 * time.Second

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	if cfg.Provider.URL == "" {
		log.Fatal().Msg("PROVIDER_URL is required")
	}

	ctx := context.Background()

	store := provider.NewFileTokenStore(tokenPath())
	idp := provider.NewHTTPProvider(provider.Config{
		BaseURL: cfg.Provider.URL,
		APIKey:  cfg.Provider.Key,
	}, store, log)

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	manager := session.NewManager(idp, mongodb.NewProfileStore(db), session.WithLogger(log))
	defer manager.Close()
	manager.Start(ctx)

	if err := run(ctx, manager, flag.Args()); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(ctx context.Context, manager *session.Manager, args []string) error {
	switch args[0] {
	case "register":
		if len(args) != 4 {
			return fmt.Errorf("usage: sessionctl register <name> <email> <password>")
		}
		if err := manager.Register(ctx, args[1], args[2], args[3]); err != nil {
			return err
		}
		fmt.Println("registered", args[2])
		return nil

	case "login":
		if len(args) != 3 {
			return fmt.Errorf("usage: sessionctl login <email> <password>")
		}
		if err := manager.Login(ctx, args[1], args[2]); err != nil {
			return err
		}
		sess, err := awaitSession(manager)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (expires %s)\n", sess.Identity.Email, sess.ExpiresAt.Format(time.RFC3339))
		return nil

	case "logout":
		if err := manager.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "whoami":
		sess, err := awaitRestore(manager)
		if err != nil {
			return err
		}
		if sess == nil {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Printf("%s (%s)\n", sess.Identity.Email, sess.Identity.ID)
		if sess.Expired() {
			fmt.Println("session expired; log in again")
		}
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// awaitSession blocks until a session change arrives, since login resolves
// through the provider's notification rather than its return value.
func awaitSession(manager *session.Manager) (*session.Session, error) {
	if sess, _ := manager.Snapshot(); sess != nil {
		return sess, nil
	}

	ch := make(chan *session.Session, 1)
	unsubscribe := manager.Subscribe(func(s *session.Session) {
		select {
		case ch <- s:
		default:
		}
	})
	defer unsubscribe()

	// Re-check after subscribing so a change between the first Snapshot and
	// Subscribe is not missed.
	if sess, _ := manager.Snapshot(); sess != nil {
		return sess, nil
	}

	select {
	case sess := <-ch:
		if sess == nil {
			return nil, fmt.Errorf("session was cleared before it settled")
		}
		return sess, nil
	case <-time.After(waitTimeout):
		return nil, fmt.Errorf("timed out waiting for the session to settle")
	}
}

// awaitRestore blocks until the initial restoration resolves either way.
func awaitRestore(manager *session.Manager) (*session.Session, error) {
	deadline := time.Now().Add(waitTimeout)
	for {
		sess, loading := manager.Snapshot()
		if !loading {
			return sess, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out restoring the session")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".marketplace", "token")
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: sessionctl <command> [args]

commands:
  register <name> <email> <password>   create an account and provision its profile
  login <email> <password>             sign in and persist the session token
  logout                               sign out and drop the persisted token
  whoami                               show the restored session, if any
`)
}
