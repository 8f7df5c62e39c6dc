// Package sui holds the pieces of the Sui protocol a passkey wallet needs:
// networks and chain ids, address derivation, intent digests, BCS encoding and
// the passkey signature envelope.
package sui

import (
	"fmt"
	"strings"
)

// Network is one of the named Sui networks.
type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet  Network = "testnet"
	Devnet   Network = "devnet"
	Localnet Network = "localnet"
)

// Networks lists every supported network.
var Networks = []Network{Mainnet, Testnet, Devnet, Localnet}

const chainPrefix = "sui:"

// ParseNetwork validates a network name.
func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Networks {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown sui network %q", s)
}

// Chain returns the wallet-standard chain id, e.g. "sui:testnet".
func (n Network) Chain() string {
	return chainPrefix + string(n)
}

// FullnodeURL returns the public fullnode JSON-RPC endpoint of the network.
func (n Network) FullnodeURL() string {
	switch n {
	case Mainnet:
		return "https://fullnode.mainnet.sui.io:443"
	case Testnet:
		return "https://fullnode.testnet.sui.io:443"
	case Devnet:
		return "https://fullnode.devnet.sui.io:443"
	case Localnet:
		return "http://127.0.0.1:9000"
	}
	return ""
}

// Chains returns the chain ids of every supported network.
func Chains() []string {
	out := make([]string, 0, len(Networks))
	for _, n := range Networks {
		out = append(out, n.Chain())
	}
	return out
}

// ChainNetwork returns the network component of a chain id: "sui:devnet" -> "devnet".
// Anything after the first colon is compared verbatim.
func ChainNetwork(chain string) string {
	_, network, ok := strings.Cut(chain, ":")
	if !ok {
		return ""
	}
	return network
}
