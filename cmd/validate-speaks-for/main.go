// Command validate-speaks-for runs a signed speaks-for credential
// through the full verification pipeline: schema, signature, trust
// chain, expiration, and keyid binding. It performs no network calls.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fed4fire/speaksfor/internal/cliutil"
	"github.com/fed4fire/speaksfor/pkg/credential"
	"github.com/fed4fire/speaksfor/pkg/loader"
	"github.com/fed4fire/speaksfor/pkg/trust"
	"github.com/fed4fire/speaksfor/pkg/verifier"
)

// defaultCADir is the bundled trust anchor directory used when -ca is
// not given, per this toolkit's documented default. It ships empty;
// operators populate it with their federation's CA certificates.
const defaultCADir = "resources/ca"

func main() {
	var (
		inFile          = flag.String("s", "-", "signed credential file, or \"-\" for stdin")
		format          = flag.String("f", "xml", "credential format: xml or base64")
		caDir           = flag.String("ca", defaultCADir, "trust anchor directory")
		expectTailCert  = flag.String("t", "", "expected tail certificate file (PEM)")
		expectTailKeyID = flag.String("k", "", "expected tail keyid (hex)")
		verbose         = flag.Bool("v", false, "verbose logging")
		veryVerbose     = flag.Bool("vv", false, "very verbose logging")
	)
	flag.Parse()

	level := cliutil.Quiet
	if *veryVerbose {
		level = cliutil.VeryVerbose
	} else if *verbose {
		level = cliutil.Verbose
	}
	log := cliutil.NewStderr(level)

	if *expectTailCert != "" && *expectTailKeyID != "" {
		fmt.Fprintln(os.Stderr, "validate-speaks-for: -t and -k are mutually exclusive")
		os.Exit(cliutil.ExitUsage)
	}

	raw, err := readInput(*inFile)
	if err != nil {
		log.Fatalf("reading input: %v", err)
	}

	switch *format {
	case "xml":
		// already the document itself
	case "base64":
		decoded, err := base64.URLEncoding.DecodeString(string(raw))
		if err != nil {
			fmt.Fprintln(os.Stderr, "validate-speaks-for: decoding base64 credential:", err)
			os.Exit(cliutil.ExitUsage)
		}
		raw = decoded
	default:
		fmt.Fprintf(os.Stderr, "validate-speaks-for: unsupported format %q, want \"xml\" or \"base64\"\n", *format)
		os.Exit(cliutil.ExitUsage)
	}

	opts := verifier.Options{Now: time.Now()}

	if *caDir != "" {
		log.Info("loading trust store from %s", *caDir)
		store, err := trust.NewStore(*caDir)
		switch {
		case err == nil:
			opts.Trust = store
		case *caDir == defaultCADir:
			// The bundled default ships empty; an operator who hasn't
			// populated it yet gets no chain-of-trust check rather than
			// a hard failure, same as passing -ca "" explicitly.
			log.Info("no trust anchors at %s, skipping chain-of-trust check", *caDir)
		default:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(cliutil.ExitCodeFor(err))
		}
	}

	switch {
	case *expectTailCert != "":
		cert, err := loader.CertificateFromFile(*expectTailCert)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(cliutil.ExitCodeFor(err))
		}
		keyID, err := verifier.ExpectedKeyIDFor(cert)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(cliutil.ExitUnknown)
		}
		opts.Expected.TailKeyID = keyID
	case *expectTailKeyID != "":
		keyID, err := credential.KeyIDFromHex(*expectTailKeyID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(cliutil.ExitUsage)
		}
		opts.Expected.TailKeyID = keyID
	}

	log.Info("verifying credential")
	doc, err := verifier.Verify(raw, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliutil.ExitCodeFor(err))
	}

	fmt.Printf("OK head=%s tail=%s expires=%s\n", doc.HeadKeyID, doc.TailKeyID, doc.Expires.Format(time.RFC3339))
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
