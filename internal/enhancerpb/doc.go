// Package enhancerpb defines the wire contract of the conditioning
// enhancement service: request/response messages, the gRPC service
// descriptor for conditioning.v1.Enhancer, and the CBOR codec the messages
// travel in.
//
// Messages are plain Go structs encoded with CBOR Core Deterministic
// Encoding, so identical requests always produce identical bytes. Clients
// select the codec with the "cbor" content-subtype; NewEnhancerClient does
// this automatically.
package enhancerpb
