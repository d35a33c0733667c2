package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	grpcapi "github.com/St1cky1/taskboard/internal/api/grpc"
	"github.com/St1cky1/taskboard/internal/apiclient"
	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/logging"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// remote - все, что CLI вызывает на сервере
type remote interface {
	board.TaskAPI
	Page(ctx context.Context, q entity.ListTasksQuery) (*entity.TaskPage, error)
}

// credentials сохраняются после login
type credentials struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token"`
}

type app struct {
	server    string
	grpcAddr  string
	token     string
	credsPath string
	verbose   bool

	closers []func() error
}

func defaultCredsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".taskboard.yaml"
	}
	return filepath.Join(dir, "taskboard", "credentials.yaml")
}

func (a *app) loadCredentials() (credentials, error) {
	var creds credentials
	data, err := os.ReadFile(a.credsPath)
	if errors.Is(err, os.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return creds, err
	}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("parse %s: %w", a.credsPath, err)
	}
	return creds, nil
}

func (a *app) saveCredentials(creds credentials) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.credsPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(a.credsPath, data, 0o600)
}

// resolveToken: флаг, затем TASKBOARD_TOKEN, затем сохраненный файл
func (a *app) resolveToken() (string, error) {
	if a.token != "" {
		return a.token, nil
	}
	if env := os.Getenv("TASKBOARD_TOKEN"); env != "" {
		return env, nil
	}
	creds, err := a.loadCredentials()
	if err != nil {
		return "", err
	}
	if creds.Token == "" {
		return "", errors.New("not logged in: run `taskboard login` or pass --token")
	}
	return creds.Token, nil
}

func (a *app) remote() (remote, error) {
	token, err := a.resolveToken()
	if err != nil {
		return nil, err
	}
	if a.grpcAddr != "" {
		c, err := grpcapi.NewClient(a.grpcAddr, token)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	}
	return apiclient.New(a.server, token), nil
}

func (a *app) logger() log.FieldLogger {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	return logging.Component(logging.New(level, "text"), "cli")
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Kanban task board client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.server, "server", envOr("TASKBOARD_SERVER", "http://localhost:8080"), "HTTP API base URL")
	root.PersistentFlags().StringVar(&a.grpcAddr, "grpc-addr", os.Getenv("TASKBOARD_GRPC_ADDR"), "use the gRPC API at this address instead of HTTP")
	root.PersistentFlags().StringVar(&a.token, "token", "", "access token (default: saved by login)")
	root.PersistentFlags().StringVar(&a.credsPath, "credentials", defaultCredsPath(), "credentials file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newLoginCmd(a), newTasksCmd(a), newBoardCmd(a))
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
