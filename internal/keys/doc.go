// Package keys manages the API key lifecycle: a durable pool of pre-generated
// keys partitioned into available and used, an issuer that moves keys from
// one partition to the other, and a gate that checks presented keys.
//
// All pool state is guarded by a single mutex. Issuance pops a key and
// persists the new record under that lock before returning, so the window in
// which a crash can lose an issued key is limited to the record write itself.
// A failed write is logged and the issuance still completes in memory.
package keys
