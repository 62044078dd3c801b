/*
Package codec implements the event codec: encoding and decoding of the
fixed 192-byte signed envelope, Ed25519 signing/verification, and BLAKE3
event-id/content-hash computation.

The wire layout is exact: any implementation must reproduce it byte-for-byte.
Nothing here touches storage.
*/
package codec
