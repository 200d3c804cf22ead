package main

import (
	"context"
	"fmt"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/bufcrypt"
	"github.com/cybroslabs/libbufcrypt-go/config"
	"github.com/cybroslabs/libbufcrypt-go/kms"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var Version = "dev"

const envKey = "env"

// engine hides whether the work happens in process or on a kms server
type engine interface {
	Encrypt(target base.Buffer, aad []byte, alg base.Algorithm, flags base.Flags, key []byte, iv []byte, tag []byte) error
	Decrypt(target base.Buffer, aad []byte, alg base.Algorithm, key []byte, tag []byte, iv []byte) error
	Sha256(data []byte) ([base.SHA256_SIZE]byte, error)
	Md5(data []byte) ([base.MD5_SIZE]byte, error)
}

type localEngine struct {
	*bufcrypt.Crypto
}

func (l localEngine) Sha256(data []byte) ([base.SHA256_SIZE]byte, error) {
	return l.Crypto.Sha256(data), nil
}

func (l localEngine) Md5(data []byte) ([base.MD5_SIZE]byte, error) {
	return l.Crypto.Md5(data), nil
}

type remoteEngine struct {
	ctx    context.Context
	client *kms.Client
}

func (r remoteEngine) Encrypt(target base.Buffer, aad []byte, alg base.Algorithm, flags base.Flags, key []byte, iv []byte, tag []byte) error {
	return r.client.Encrypt(r.ctx, target, aad, alg, flags, key, iv, tag)
}

func (r remoteEngine) Decrypt(target base.Buffer, aad []byte, alg base.Algorithm, key []byte, tag []byte, iv []byte) error {
	return r.client.Decrypt(r.ctx, target, aad, alg, key, tag, iv)
}

func (r remoteEngine) Sha256(data []byte) ([base.SHA256_SIZE]byte, error) {
	return r.client.Sha256(r.ctx, data)
}

func (r remoteEngine) Md5(data []byte) ([base.MD5_SIZE]byte, error) {
	return r.client.Md5(r.ctx, data)
}

type env struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	crypto *bufcrypt.Crypto
	engine engine
	conn   *grpc.ClientConn
}

func getEnv(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}

func App() *cli.App {
	return &cli.App{
		Name:    "bufcrypt",
		Usage:   "AES-GCM sealing and SHA-256/MD5 digests for files",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"BUFCRYPT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "auto, software or hardware",
			},
			&cli.StringFlag{
				Name:  "remote",
				Usage: "kms server address, work is done locally when empty",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			sealCommand(),
			openCommand(),
			digestCommand("sha256", "SHA-256"),
			digestCommand("md5", "MD5"),
			selftestCommand(),
			serveCommand(),
		},
		Before: setup,
		After:  teardown,
	}
}

func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("remote") {
		cfg.Remote = c.String("remote")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	logger, err := cfg.Log.Build()
	if err != nil {
		return err
	}
	crypto, err := bufcrypt.New(&bufcrypt.Settings{
		Logger:  logger,
		Backend: cfg.Backend,
	})
	if err != nil {
		return err
	}

	e := &env{
		cfg:    cfg,
		logger: logger,
		crypto: crypto,
		engine: localEngine{crypto},
	}
	if cfg.Remote != "" {
		e.conn, err = grpc.NewClient(cfg.Remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("unable to connect to %s: %w", cfg.Remote, err)
		}
		client, err := kms.NewClient(&kms.ClientSettings{Logger: logger, Conn: e.conn})
		if err != nil {
			return err
		}
		e.engine = remoteEngine{ctx: c.Context, client: client}
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[envKey] = e
	return nil
}

func teardown(c *cli.Context) error {
	e, ok := c.App.Metadata[envKey].(*env)
	if !ok {
		return nil
	}
	if e.conn != nil {
		_ = e.conn.Close()
	}
	_ = e.logger.Sync()
	return nil
}
