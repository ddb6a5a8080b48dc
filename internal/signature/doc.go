// Package signature verifies X-Hub style webhook signatures.
//
// A producer signs the raw request body with a shared secret and sends the
// hex encoded MAC in a header:
//
//	X-Hub-Signature: sha1=03376ee7ad7bbfceee98660439a4d8b125122a5a
//
// The verifier recomputes the MAC over the exact body bytes, compares it in
// constant time and stores the boolean result in the request context. The
// body is buffered for the digest and handed to downstream handlers as a
// fresh reader over the same bytes.
//
// # Usage
//
//	verifier, err := signature.New(secret, &signature.Options{
//	    Algorithm:       signature.HmacSHA256,
//	    SignaturePrefix: "sha256=",
//	    Header:          "X-Hub-Signature-256",
//	    RejectInvalid:   true,
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	router.Handle("/webhook", verifier.Middleware(handler))
//
// Without RejectInvalid the handler decides:
//
//	if !signature.IsValid(r) {
//	    http.Error(w, "Bad Request", http.StatusBadRequest)
//	    return
//	}
//
// # Prefix handling
//
// The configured prefix is skipped by length only. A header "md5=<digest>"
// checked against the default "sha1=" prefix loses five bytes, not four, and
// the remaining text is decoded as the digest. The characters of the prefix
// are never compared.
//
// # Failures
//
// A missing or short header, an unknown algorithm, malformed hex, an
// oversized body and a digest mismatch all produce the same result: the
// request is flagged invalid. The reason is logged at debug level only.
// Serving a request through an unconfigured Verifier panics.
package signature
