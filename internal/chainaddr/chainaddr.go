// Package chainaddr normalizes and classifies wallet and contract addresses per chain.
package chainaddr

import (
	"strings"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"

	"coin-wallet-ledger/internal/domain"
)

// Kind classifies an address for wallet-level accounting.
type Kind int

const (
	// KindWallet is an ordinary externally owned address.
	KindWallet Kind = iota
	// KindSentinel is a mint/burn placeholder (empty, null marker, zero address).
	KindSentinel
	// KindProgramDerived is a Solana address off the ed25519 curve, owned by a program.
	KindProgramDerived
	// KindInvalid does not parse for the chain's address format.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindWallet:
		return "wallet"
	case KindSentinel:
		return "sentinel"
	case KindProgramDerived:
		return "program_derived"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// solanaSystemProgram decodes to 32 zero bytes, which happens to lie on the curve.
const solanaSystemProgram = "11111111111111111111111111111111"

// evmVanityZeroPrefix matches burn/vanity addresses like 0x000000000000000000000000000000000000dEaD.
const evmVanityZeroPrefix = "0x000000000"

var nullMarkers = map[string]struct{}{
	"":      {},
	"none":  {},
	"<nil>": {},
	"null":  {},
}

// Normalize applies the case rule of chainName to addr.
func Normalize(chainName, addr string) string {
	return domain.LookupChain(chainName).NormalizeAddress(addr)
}

// Classify returns the accounting kind of addr on chainName.
func Classify(chainName, addr string) Kind {
	addr = strings.TrimSpace(addr)
	if _, ok := nullMarkers[strings.ToLower(addr)]; ok {
		return KindSentinel
	}

	chain := domain.LookupChain(chainName)
	switch chain.Family {
	case domain.FamilyEVM:
		return classifyEVM(addr)
	case domain.FamilySolana:
		return classifySolana(addr)
	default:
		return KindWallet
	}
}

// IsSentinel reports whether addr is a mint/burn placeholder on chainName.
func IsSentinel(chainName, addr string) bool {
	return Classify(chainName, addr) == KindSentinel
}

func classifyEVM(addr string) Kind {
	if !common.IsHexAddress(addr) {
		return KindInvalid
	}
	if common.HexToAddress(addr) == (common.Address{}) {
		return KindSentinel
	}
	if strings.HasPrefix(strings.ToLower(addr), evmVanityZeroPrefix) {
		return KindSentinel
	}
	return KindWallet
}

func classifySolana(addr string) Kind {
	if addr == solanaSystemProgram {
		return KindSentinel
	}
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != 32 {
		return KindInvalid
	}
	if !isOnCurve(raw) {
		return KindProgramDerived
	}
	return KindWallet
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
