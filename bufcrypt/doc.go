// Package bufcrypt is the entry point for protecting byte buffers: AES-128/256-GCM
// in place with a detached IV and tag, and the SHA-256 / MD5 digests.
//
// Every call validates its arguments before it writes anything. Encryption
// either transforms the whole buffer and writes the tag or fails untouched,
// decryption authenticates the ciphertext before a single byte is decrypted.
// Errors wrap the sentinels in package base, test them with errors.Is.
package bufcrypt
