// Package elgamal implements twisted ElGamal encryption of token amounts
// over BN254 G1.
//
// A ciphertext splits into a Pedersen commitment to the amount and a
// decryption handle that binds the commitment's blinding factor to a
// specific public key:
//
//	Ciphertext{ Commitment: x*G + r*H, Handle: r*P }   with P = s^-1 * H
//
// The commitment half is what zero-knowledge proofs are checked against;
// the handle half is what lets the key holder decrypt. Ciphertexts under
// the same public key combine homomorphically by componentwise point
// addition, so balances can be credited and debited without decryption.
//
// Decryption recovers x*G = C - s*D and then solves the discrete log by a
// bounded baby-step/giant-step search. Recovery is only possible for
// amounts inside the configured search bound; outside it (or under a
// mismatched key) Decrypt reports "unknown" rather than a wrong value.
//
// The Engine is an explicit handle so tests and callers can run isolated
// instances with their own search bounds; there is no package-level
// singleton.
package elgamal
