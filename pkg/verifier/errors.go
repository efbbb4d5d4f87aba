package verifier

import "errors"

// Sentinel errors identifying which verification stage rejected a
// credential. internal/cliutil maps each to a stable process exit
// code; callers distinguish them with errors.Is.
var (
	// ErrInputParse means the input was not well-formed XML at all.
	ErrInputParse = errors.New("verifier: input is not well-formed XML")

	// ErrSchemaInvalid means the document parsed as XML but did not
	// carry the required <signed-credential>/<credential> structure.
	ErrSchemaInvalid = errors.New("verifier: credential fails structural schema check")

	// ErrSignatureInvalid means the embedded XML-DSig signature did not
	// verify against the embedded certificate chain's leaf public key,
	// or the chain's leaf key does not match the signature's KeyInfo.
	ErrSignatureInvalid = errors.New("verifier: signature does not verify")

	// ErrTrustChainNotTrusted means the signing chain does not resolve
	// to any anchor in the trust store.
	ErrTrustChainNotTrusted = errors.New("verifier: signing chain is not trusted")

	// ErrTrustChainExpired means the signing chain resolves to a known
	// anchor, but a certificate along the path has expired.
	ErrTrustChainExpired = errors.New("verifier: signing chain contains an expired certificate")

	// ErrTrustChainMalformed means the signing chain embedded in the
	// credential could not itself be parsed.
	ErrTrustChainMalformed = errors.New("verifier: signing chain is malformed")

	// ErrExpired means the credential's own <expires> timestamp is in
	// the past relative to the verification time.
	ErrExpired = errors.New("verifier: credential has expired")

	// ErrKeyBindingMismatch means the head or tail keyid recorded in
	// the ABAC rule does not match the keyid the caller expected.
	ErrKeyBindingMismatch = errors.New("verifier: keyid does not match expected binding")

	// ErrUsageConflict means the caller's options were contradictory
	// (e.g. both an expected tail certificate and an expected tail
	// keyid were supplied).
	ErrUsageConflict = errors.New("verifier: conflicting verification options")
)
