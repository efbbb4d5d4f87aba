/*
Package speaksfor is a command-line toolkit for signing and verifying
Fed4FIRE "speaks-for" credentials: signed ABAC delegation statements
that let a user hand a bounded grant of their own authority to a tool
acting on their behalf, without giving the tool their private key.

# Overview

A speaks-for credential is a signed XML document carrying a single
ABAC RT0 rule:

	userKey speaks_for userKey <- toolKey

The head and tail of the rule are identified by keyid, the lowercase
hex SHA-1 digest of the DER-encoded SubjectPublicKeyInfo of an RSA
public key. The document is wrapped in an enveloped XML-DSig
signature over the owner's private key, using RSA-SHA1 and Exclusive
XML Canonicalization, so that a relying party can verify the grant
came from the owner without ever holding the owner's key itself.

# Package Structure

	github.com/fed4fire/speaksfor/pkg/credential - shared types: bundles, keyids, parsed documents
	github.com/fed4fire/speaksfor/pkg/fingerprint - keyid computation, PEM line-wrapping
	github.com/fed4fire/speaksfor/pkg/canon       - Exclusive XML Canonicalization
	github.com/fed4fire/speaksfor/pkg/loader      - PEM and PKCS#12 key/certificate loading
	github.com/fed4fire/speaksfor/pkg/builder     - credential construction and signing
	github.com/fed4fire/speaksfor/pkg/trust       - X.509 trust anchor directories
	github.com/fed4fire/speaksfor/pkg/verifier    - the six-stage verification pipeline

# Commands

	speaks-for              - sign a new speaks-for credential
	validate-speaks-for     - run a signed credential through the verification pipeline
	base64-urlsafe-encoder  - URL-safe base64 encode/decode a credential for embedding in a URL

# Security

Verification never performs network I/O: trust anchors are read from
a local directory in the OpenSSL subject-hash-indexed layout, and
there is no revocation checking. See pkg/verifier for the exact
ordering of checks and pkg/canon for the one canonicalization fixup
this ecosystem's deployed verifiers require.
*/
package speaksfor
