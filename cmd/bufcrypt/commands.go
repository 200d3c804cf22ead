package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/bufcrypt"
	"github.com/cybroslabs/libbufcrypt-go/gcm"
	"github.com/urfave/cli/v2"
)

func ioFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "in",
			Aliases: []string{"i"},
			Usage:   "input file, - for stdin",
			Value:   "-",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "output file, - for stdout",
			Value:   "-",
		},
	}
}

func cryptFlags() []cli.Flag {
	return append(ioFlags(),
		&cli.StringFlag{
			Name:    "key",
			Aliases: []string{"k"},
			Usage:   "hex encoded key",
		},
		&cli.StringFlag{
			Name:  "aad",
			Usage: "additional authenticated data",
		},
		&cli.StringFlag{
			Name:    "algorithm",
			Aliases: []string{"a"},
			Usage:   "aes128-gcm or aes256-gcm, configured default when empty",
		},
	)
}

func readInput(c *cli.Context, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(c.App.Reader)
	}
	return os.ReadFile(name)
}

func writeOutput(c *cli.Context, name string, data []byte) error {
	if name == "-" {
		_, err := c.App.Writer.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0600)
}

func algorithm(c *cli.Context) (base.Algorithm, error) {
	if c.String("algorithm") == "" {
		return getEnv(c).cfg.AlgorithmValue(), nil
	}
	return base.ParseAlgorithm(c.String("algorithm"))
}

func sealCommand() *cli.Command {
	return &cli.Command{
		Name:  "seal",
		Usage: "Encrypt a file into IV || ciphertext || tag",
		Flags: append(cryptFlags(),
			&cli.BoolFlag{
				Name:  "generate-key",
				Usage: "generate a random key and print it to stderr",
			},
		),
		Action: seal,
	}
}

func seal(c *cli.Context) error {
	e := getEnv(c)
	alg, err := algorithm(c)
	if err != nil {
		return err
	}
	flags := base.FlagsGenerateIV
	var key []byte
	if c.Bool("generate-key") {
		flags |= base.FlagsGenerateKey
		key = make([]byte, alg.KeySize())
	} else {
		if key, err = hex.DecodeString(c.String("key")); err != nil {
			return fmt.Errorf("key: %w", err)
		}
	}
	data, err := readInput(c, c.String("in"))
	if err != nil {
		return err
	}

	msg := make([]byte, base.GCM_IV_LENGTH+len(data)+base.GCM_TAG_LENGTH)
	iv := msg[:base.GCM_IV_LENGTH]
	body := msg[base.GCM_IV_LENGTH : base.GCM_IV_LENGTH+len(data)]
	tag := msg[base.GCM_IV_LENGTH+len(data):]
	copy(body, data)
	if err = e.engine.Encrypt(base.Mutable(body), []byte(c.String("aad")), alg, flags, key, iv, tag); err != nil {
		return err
	}
	if flags.Has(base.FlagsGenerateKey) {
		fmt.Fprintf(c.App.ErrWriter, "key: %s\n", hex.EncodeToString(key))
	}
	e.logger.Debugf("sealed %d bytes with %v", len(data), alg)
	return writeOutput(c, c.String("out"), msg)
}

func openCommand() *cli.Command {
	return &cli.Command{
		Name:   "open",
		Usage:  "Verify and decrypt a file produced by seal",
		Flags:  cryptFlags(),
		Action: open,
	}
}

func open(c *cli.Context) error {
	e := getEnv(c)
	alg, err := algorithm(c)
	if err != nil {
		return err
	}
	key, err := hex.DecodeString(c.String("key"))
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	msg, err := readInput(c, c.String("in"))
	if err != nil {
		return err
	}
	if len(msg) < base.GCM_IV_LENGTH+base.GCM_TAG_LENGTH {
		return fmt.Errorf("input of %d bytes has no room for iv and tag: %w", len(msg), base.ErrInvalidSize)
	}
	iv := msg[:base.GCM_IV_LENGTH]
	body := msg[base.GCM_IV_LENGTH : len(msg)-base.GCM_TAG_LENGTH]
	tag := msg[len(msg)-base.GCM_TAG_LENGTH:]
	if err = e.engine.Decrypt(base.Mutable(body), []byte(c.String("aad")), alg, key, tag, iv); err != nil {
		return err
	}
	return writeOutput(c, c.String("out"), body)
}

func digestCommand(name string, title string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     "Print " + title + " digests of files or stdin",
		ArgsUsage: "[file...]",
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			files := c.Args().Slice()
			if len(files) == 0 {
				files = []string{"-"}
			}
			for _, f := range files {
				data, err := readInput(c, f)
				if err != nil {
					return err
				}
				var sum []byte
				if name == "md5" {
					s, err := e.engine.Md5(data)
					if err != nil {
						return err
					}
					sum = s[:]
				} else {
					s, err := e.engine.Sha256(data)
					if err != nil {
						return err
					}
					sum = s[:]
				}
				fmt.Fprintf(c.App.Writer, "%x  %s\n", sum, f)
			}
			return nil
		},
	}
}

func selftestCommand() *cli.Command {
	return &cli.Command{
		Name:  "selftest",
		Usage: "Run known answer tests on both backends",
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			failed := 0
			for _, b := range []gcm.Backend{gcm.Software, gcm.Hardware} {
				if err := bufcrypt.SelfTest(b); err != nil {
					e.logger.Errorf("self test failed: %v", err)
					fmt.Fprintf(c.App.Writer, "%-10s FAIL %v\n", b.Name(), err)
					failed++
					continue
				}
				fmt.Fprintf(c.App.Writer, "%-10s ok\n", b.Name())
			}
			fmt.Fprintf(c.App.Writer, "detected   %s\n", gcm.Detect().Name())
			if failed > 0 {
				return fmt.Errorf("%d backend(s) failed", failed)
			}
			return nil
		},
	}
}
