// Package seal provides a small authenticated-encryption codec for
// protecting values that must be stored on an untrusted client, such as
// refresh tokens kept in browser cookies. A Suite is configured once per
// process with a cipher mode and key, and produces self-contained
// ciphertext strings of the form:
//
//	base64url(iv) "." base64url(ciphertext) [ "." base64url(tag) ]
//
// where the tag segment is present only for authenticated modes.
package seal
