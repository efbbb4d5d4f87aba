// Command base64-urlsafe-encoder reads bytes from stdin and writes
// their URL-safe base64 encoding to stdout, for embedding a signed
// credential in a query parameter or other URL-safe context. Pass -d
// to decode instead of encode.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	decode := flag.Bool("d", false, "decode instead of encode")
	flag.Parse()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "base64-urlsafe-encoder: reading stdin: %v\n", err)
		os.Exit(1)
	}

	if *decode {
		decoded, err := base64.URLEncoding.DecodeString(string(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "base64-urlsafe-encoder: decoding: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(decoded)
		return
	}

	fmt.Println(base64.URLEncoding.EncodeToString(data))
}
