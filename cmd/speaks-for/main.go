// Command speaks-for signs a new speaks-for credential: it binds an
// owner's certificate (the ABAC head) to a tool certificate (the ABAC
// tail) with a single "head speaks_for tail" rule, and writes the
// resulting signed XML document.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fed4fire/speaksfor/internal/cliutil"
	"github.com/fed4fire/speaksfor/internal/config"
	"github.com/fed4fire/speaksfor/pkg/builder"
	"github.com/fed4fire/speaksfor/pkg/loader"
)

func main() {
	var (
		ownerKeyFile = flag.String("c", "", "signer (owner) key/certificate file")
		format       = flag.String("f", "", "owner key file format: pem or p12")
		toolCertFile = flag.String("t", "", "tool certificate file (PEM, public key only)")
		passphrase   = flag.String("p", "", "passphrase for an encrypted owner key")
		role         = flag.String("r", "", "optional role granted to the tool (e.g. authority)")
		validityDays = flag.Int("d", 0, "credential validity in days")
		outFile      = flag.String("o", "", "output file (default: stdout)")
		configFile   = flag.String("config", "", "optional YAML defaults file")
		verbose      = flag.Bool("v", false, "verbose logging")
		veryVerbose  = flag.Bool("vv", false, "very verbose logging")
	)
	flag.Parse()

	level := cliutil.Quiet
	if *veryVerbose {
		level = cliutil.VeryVerbose
	} else if *verbose {
		level = cliutil.Verbose
	}
	log := cliutil.NewStderr(level)

	if *configFile != "" {
		defaults, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		if *ownerKeyFile == "" {
			*ownerKeyFile = defaults.DefaultKeyFile
		}
		if *validityDays == 0 {
			*validityDays = defaults.DefaultValidityDays
		}
	}

	if *ownerKeyFile == "" || *format == "" || *toolCertFile == "" {
		fmt.Fprintln(os.Stderr, "usage: speaks-for -c owner.pem -f pem|p12 -t tool.pem [-d 120] [-p passphrase] [-r role] [-o out.xml]")
		os.Exit(cliutil.ExitUsage)
	}
	if *validityDays <= 0 {
		*validityDays = 120
	}

	log.Info("loading owner bundle from %s (format %s)", *ownerKeyFile, *format)
	bundle, err := loader.FromFormat(*format, *ownerKeyFile, []byte(*passphrase))
	if err != nil {
		log.Debug("owner bundle load error: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliutil.ExitCodeFor(err))
	}

	log.Info("loading tool certificate from %s", *toolCertFile)
	toolCert, err := loader.CertificateFromFile(*toolCertFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliutil.ExitCodeFor(err))
	}

	log.Info("signing credential, validity %d days", *validityDays)
	out, err := builder.Sign(builder.Request{
		Owner:        bundle,
		ToolCert:     toolCert,
		ValidityDays: *validityDays,
		Role:         *role,
	}, time.Now().UTC())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliutil.ExitUnknown)
	}

	if err := writeOutput(*outFile, out); err != nil {
		log.Fatalf("writing output: %v", err)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
