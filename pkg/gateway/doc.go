// Package gateway exposes a client for the HyperSlop gateway API, the
// service brokering filesystem operations across nodes in the HyperSlop
// storage network. Mutations and structural listings go through the JSON
// RPC endpoint (POST {base}/rpc); text-file content is fetched from the raw
// read endpoint (GET {base}/read/{node}/{path}). The client is stateless:
// one logical operation maps to exactly one remote call, with no retry and
// no caching.
package gateway
