// Package config defines the configuration shared by the notary client, the
// transaction processor and the development ledger.
//
// Every command starts from NewDefaultConfig, then overrides values with
// command-line flags and with an optional configuration file found in
// Config.DataDir. The data directory also holds:
//
//  keys/<name>.priv // hex encoded secp256k1 private key (cf. notary keygen).
//  keys/<name>.pub // hex encoded compressed public key.
//  badger_db/ // (optional) the development ledger's state database.
package config
